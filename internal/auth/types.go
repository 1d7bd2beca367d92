package auth

import "time"

// Identity represents an authenticated principal scoped to exactly one
// tenant. The tenant id is immutable after creation.
type Identity struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	RoleID       string
	IsAdmin      bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleRecord groups named permissions inside a tenant. The founding admin
// role carries the wildcard permission.
type RoleRecord struct {
	ID          string
	TenantID    string
	Name        string
	Permissions []string
	CreatedAt   time.Time
}

// PermissionWildcard grants every permission when present on a role.
const PermissionWildcard = "*"

// RefreshTokenRecord is the server-side ledger entry backing a live refresh
// token. Deleting the record revokes the token regardless of its remaining
// signed lifetime.
type RefreshTokenRecord struct {
	ID         string
	IdentityID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Profile is the sanitized identity projection returned to clients. It never
// carries the password hash.
type Profile struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenant_id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Role        Role     `json:"role"`
	IsAdmin     bool     `json:"is_admin"`
	Active      bool     `json:"active"`
	Permissions []string `json:"permissions,omitempty"`
}

// NewProfile projects an identity into its client-facing shape.
func NewProfile(ident *Identity) Profile {
	return Profile{
		ID:        ident.ID,
		TenantID:  ident.TenantID,
		Email:     ident.Email,
		FirstName: ident.FirstName,
		LastName:  ident.LastName,
		Role:      ident.Role,
		IsAdmin:   ident.IsAdmin,
		Active:    ident.Active,
	}
}
