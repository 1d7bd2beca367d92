package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"agencyhub.io/internal/auth"
	"agencyhub.io/internal/crm"
	"agencyhub.io/internal/tenant"
)

// fakeStore backs the full API under httptest without a database.
type fakeStore struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity
	roles      map[string]*auth.RoleRecord
	tokens     map[string]*auth.RefreshTokenRecord
	tenants    map[string]*tenant.Tenant
	modules    map[string][]string
	contacts   map[string]*crm.Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities: make(map[string]*auth.Identity),
		roles:      make(map[string]*auth.RoleRecord),
		tokens:     make(map[string]*auth.RefreshTokenRecord),
		tenants:    make(map[string]*tenant.Tenant),
		modules:    make(map[string][]string),
		contacts:   make(map[string]*crm.Contact),
	}
}

// auth.Store

func (f *fakeStore) Identities(ctx context.Context) auth.IdentityStore        { return fakeIdentities{f} }
func (f *fakeStore) Roles(ctx context.Context) auth.RoleStore                 { return fakeRoles{f} }
func (f *fakeStore) RefreshTokens(ctx context.Context) auth.RefreshTokenStore { return fakeTokens{f} }

func (f *fakeStore) ProvisionRegistration(ctx context.Context, tenantName string, ident *auth.Identity, role *auth.RoleRecord, modules []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenants[ident.TenantID] = &tenant.Tenant{ID: ident.TenantID, Name: tenantName}
	f.roles[role.ID] = role
	cp := *ident
	f.identities[ident.ID] = &cp
	f.modules[ident.TenantID] = append([]string(nil), modules...)
	return nil
}

type fakeIdentities struct{ f *fakeStore }

func (s fakeIdentities) Create(ctx context.Context, ident *auth.Identity) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cp := *ident
	s.f.identities[ident.ID] = &cp
	return nil
}

func (s fakeIdentities) Find(ctx context.Context, id string) (*auth.Identity, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	ident, ok := s.f.identities[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *ident
	return &cp, nil
}

func (s fakeIdentities) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, ident := range s.f.identities {
		if ident.Email == email {
			cp := *ident
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s fakeIdentities) ListByTenant(ctx context.Context, tenantID string) ([]*auth.Identity, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []*auth.Identity
	for _, ident := range s.f.identities {
		if ident.TenantID == tenantID {
			cp := *ident
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s fakeIdentities) SetActive(ctx context.Context, id string, active bool) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	ident, ok := s.f.identities[id]
	if !ok {
		return auth.ErrNotFound
	}
	ident.Active = active
	return nil
}

func (s fakeIdentities) Delete(ctx context.Context, id string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.identities, id)
	return nil
}

type fakeRoles struct{ f *fakeStore }

func (s fakeRoles) Create(ctx context.Context, role *auth.RoleRecord) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.roles[role.ID] = role
	return nil
}

func (s fakeRoles) Find(ctx context.Context, id string) (*auth.RoleRecord, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	role, ok := s.f.roles[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return role, nil
}

func (s fakeRoles) FindByTenantAndName(ctx context.Context, tenantID, name string) (*auth.RoleRecord, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, role := range s.f.roles {
		if role.TenantID == tenantID && role.Name == name {
			return role, nil
		}
	}
	return nil, auth.ErrNotFound
}

type fakeTokens struct{ f *fakeStore }

func (s fakeTokens) Create(ctx context.Context, rec *auth.RefreshTokenRecord) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cp := *rec
	s.f.tokens[rec.ID] = &cp
	return nil
}

func (s fakeTokens) Find(ctx context.Context, token string) (*auth.RefreshTokenRecord, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, rec := range s.f.tokens {
		if rec.Token == token {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s fakeTokens) Delete(ctx context.Context, id string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.tokens, id)
	return nil
}

func (s fakeTokens) DeleteByIdentity(ctx context.Context, identityID string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for id, rec := range s.f.tokens {
		if rec.IdentityID == identityID {
			delete(s.f.tokens, id)
		}
	}
	return nil
}

// tenant.Store

func (f *fakeStore) Find(ctx context.Context, id string) (*tenant.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*tenant.Tenant
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Modules(ctx context.Context, tenantID string) ([]tenant.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tenant.Module
	for _, m := range f.modules[tenantID] {
		out = append(out, tenant.Module(m))
	}
	return out, nil
}

// crm.Store

func (f *fakeStore) Create(ctx context.Context, c *crm.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeStore) ListByTenant(ctx context.Context, tenantID string) ([]*crm.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*crm.Contact
	for _, c := range f.contacts {
		if c.TenantID == tenantID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, tenantID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.TenantID != tenantID {
		return crm.ErrNotFound
	}
	delete(f.contacts, id)
	return nil
}

// newTestAPI wires the full API over the fake store.
func newTestAPI(t *testing.T) (*API, *fakeStore, *auth.Codec) {
	t.Helper()
	store := newFakeStore()
	codec, err := auth.NewCodec("test-secret", auth.WithIssuer("agencyhub-test"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	authSvc, err := auth.NewService(store, codec,
		auth.WithDefaultModules(tenant.DefaultModuleKeys()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	tenantSvc, err := tenant.NewService(store)
	if err != nil {
		t.Fatalf("tenant.NewService: %v", err)
	}
	contactSvc, err := crm.NewService(store)
	if err != nil {
		t.Fatalf("crm.NewService: %v", err)
	}
	api := New(Deps{
		Auth:          authSvc,
		Codec:         codec,
		Tenants:       tenantSvc,
		Contacts:      contactSvc,
		Version:       "test",
		RateBurst:     1000,
		RatePerSecond: 1000,
	})
	return api, store, codec
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
