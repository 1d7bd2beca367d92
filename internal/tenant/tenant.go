package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("tenant: invalid input")
	ErrNotFound     = errors.New("tenant: not found")
)

// Tenant is an isolated organization/workspace, the unit of multi-tenant
// data partitioning.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Module identifies a feature module that can be enabled per tenant.
type Module string

const (
	ModuleContacts   Module = "contacts"
	ModuleDeals      Module = "deals"
	ModuleTasks      Module = "tasks"
	ModuleQuotations Module = "quotations"
	ModuleInvoices   Module = "invoices"
	ModuleProposals  Module = "proposals"
	ModuleEmail      Module = "email"
)

// DefaultModules returns every known feature module. All of them are enabled
// for a freshly registered tenant.
func DefaultModules() []Module {
	return []Module{
		ModuleContacts, ModuleDeals, ModuleTasks,
		ModuleQuotations, ModuleInvoices, ModuleProposals, ModuleEmail,
	}
}

// DefaultModuleKeys returns the default module set as raw strings for
// storage layers.
func DefaultModuleKeys() []string {
	modules := DefaultModules()
	keys := make([]string, 0, len(modules))
	for _, m := range modules {
		keys = append(keys, string(m))
	}
	return keys
}

// Store describes tenant persistence used by the SaaS-admin surface.
// Tenant creation itself happens inside the registration transaction owned
// by the auth store.
type Store interface {
	Find(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	Modules(ctx context.Context, tenantID string) ([]Module, error)
}

// Service exposes validated tenant operations.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("tenant: store is required")
	}
	return &Service{store: store}, nil
}

func (s *Service) Find(ctx context.Context, id string) (*Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Tenant, error) {
	return s.store.List(ctx)
}

func (s *Service) Modules(ctx context.Context, tenantID string) ([]Module, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	if _, err := s.store.Find(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.store.Modules(ctx, tenantID)
}
