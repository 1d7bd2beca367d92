package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	tenants map[string]*Tenant
	modules map[string][]Module
}

func (s *stubStore) Find(ctx context.Context, id string) (*Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *stubStore) List(ctx context.Context) ([]*Tenant, error) {
	var out []*Tenant
	for _, t := range s.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubStore) Modules(ctx context.Context, tenantID string) ([]Module, error) {
	return s.modules[tenantID], nil
}

func newStub() *stubStore {
	return &stubStore{
		tenants: map[string]*Tenant{
			"t1": {ID: "t1", Name: "Acme", CreatedAt: time.Now()},
		},
		modules: map[string][]Module{
			"t1": {ModuleContacts, ModuleDeals},
		},
	}
}

func TestDefaultModulesCoverEveryFeature(t *testing.T) {
	modules := DefaultModules()
	assert.Len(t, modules, 7)
	assert.Contains(t, modules, ModuleContacts)
	assert.Contains(t, modules, ModuleEmail)

	keys := DefaultModuleKeys()
	require.Len(t, keys, len(modules))
	assert.Contains(t, keys, "invoices")
}

func TestServiceFind(t *testing.T) {
	svc, err := NewService(newStub())
	require.NoError(t, err)

	got, err := svc.Find(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = svc.Find(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Find(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceModules(t *testing.T) {
	svc, err := NewService(newStub())
	require.NoError(t, err)

	modules, err := svc.Modules(context.Background(), "t1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Module{ModuleContacts, ModuleDeals}, modules)

	// Module lookup validates tenant existence first.
	_, err = svc.Modules(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
