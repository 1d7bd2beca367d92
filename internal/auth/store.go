package auth

import "context"

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Identities(ctx context.Context) IdentityStore
	Roles(ctx context.Context) RoleStore
	RefreshTokens(ctx context.Context) RefreshTokenStore

	// ProvisionRegistration atomically creates the tenant row, its wildcard
	// admin role, the founding identity and the default feature-module
	// grants. A mid-sequence failure leaves no partial tenant behind.
	ProvisionRegistration(ctx context.Context, tenantName string, ident *Identity, role *RoleRecord, modules []string) error
}

// IdentityStore manages identities.
type IdentityStore interface {
	Create(ctx context.Context, ident *Identity) error
	Find(ctx context.Context, id string) (*Identity, error)
	// FindByEmail performs a case-insensitive lookup.
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Identity, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// RoleStore manages tenant role records.
type RoleStore interface {
	Create(ctx context.Context, role *RoleRecord) error
	Find(ctx context.Context, id string) (*RoleRecord, error)
	FindByTenantAndName(ctx context.Context, tenantID, name string) (*RoleRecord, error)
}

// RefreshTokenStore manages the refresh-token ledger. A record existing
// implies the refresh token is still exchangeable; deletion revokes it.
type RefreshTokenStore interface {
	Create(ctx context.Context, rec *RefreshTokenRecord) error
	// Find looks a record up by the exact token string.
	Find(ctx context.Context, token string) (*RefreshTokenRecord, error)
	// Delete is idempotent; deleting a nonexistent id is not an error.
	Delete(ctx context.Context, id string) error
	DeleteByIdentity(ctx context.Context, identityID string) error
}
