package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencyhub.io/internal/ids"
)

var (
	ErrInvalidInput = errors.New("crm: invalid input")
	ErrNotFound     = errors.New("crm: not found")
)

// Contact is a tenant-scoped CRM contact. Every operation takes the tenant
// id explicitly; the storage layer filters on it, which is where tenant
// isolation is enforced.
type Contact struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store describes contact persistence.
type Store interface {
	Create(ctx context.Context, c *Contact) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Contact, error)
	// Delete removes a contact only when it belongs to the given tenant.
	Delete(ctx context.Context, tenantID, id string) error
}

// Service exposes validated contact operations.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("crm: store is required")
	}
	return &Service{store: store}, nil
}

// CreateParams carries contact creation input.
type CreateParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (*Contact, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: contact name is required", ErrInvalidInput)
	}
	contact := &Contact{
		ID:       ids.New(),
		TenantID: tenantID,
		Name:     name,
		Email:    strings.TrimSpace(strings.ToLower(params.Email)),
		Phone:    strings.TrimSpace(params.Phone),
		Company:  strings.TrimSpace(params.Company),
	}
	if err := s.store.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*Contact, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	return s.store.ListByTenant(ctx, tenantID)
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	tenantID = strings.TrimSpace(tenantID)
	id = strings.TrimSpace(id)
	if tenantID == "" || id == "" {
		return fmt.Errorf("%w: tenant id and contact id are required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, tenantID, id)
}
