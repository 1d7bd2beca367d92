package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agencyhub.io/internal/ids"
)

const adminRoleName = "admin"

// Service orchestrates registration, login, refresh and logout over the
// password hasher, token codec and token store.
type Service struct {
	store Store
	codec *Codec
	now   func() time.Time

	// defaultModules are granted to every newly registered tenant.
	defaultModules []string
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithDefaultModules sets the feature modules seeded for new tenants.
func WithDefaultModules(modules []string) ServiceOption {
	return func(s *Service) {
		s.defaultModules = modules
	}
}

// WithServiceClock overrides the time source (useful for tests).
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service.
func NewService(store Store, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	s := &Service{
		store: store,
		codec: codec,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TokenPair represents access and refresh tokens along with their
// expirations.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RegisterParams carries the self-service registration input.
type RegisterParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	CompanyName string
}

// Register provisions a new tenant with its founding admin identity and
// issues the first token pair. The multi-step write (tenant, role, identity,
// module grants) happens in a single transaction.
func (s *Service) Register(ctx context.Context, params RegisterParams) (TokenPair, Profile, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return TokenPair{}, Profile{}, err
	}
	if strings.TrimSpace(params.Password) == "" {
		return TokenPair{}, Profile{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	company := strings.TrimSpace(params.CompanyName)
	if company == "" {
		return TokenPair{}, Profile{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}

	if existing, err := s.store.Identities(ctx).FindByEmail(ctx, email); err != nil && !errors.Is(err, ErrNotFound) {
		return TokenPair{}, Profile{}, err
	} else if existing != nil {
		return TokenPair{}, Profile{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return TokenPair{}, Profile{}, err
	}

	tenantID := ids.New()
	role := &RoleRecord{
		ID:          ids.New(),
		TenantID:    tenantID,
		Name:        adminRoleName,
		Permissions: []string{PermissionWildcard},
	}
	ident := &Identity{
		ID:           ids.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		Role:         RoleAgencyAdmin,
		RoleID:       role.ID,
		IsAdmin:      true,
		Active:       true,
	}

	if err := s.store.ProvisionRegistration(ctx, company, ident, role, s.defaultModules); err != nil {
		return TokenPair{}, Profile{}, err
	}

	pair, err := s.mintPair(ctx, ident)
	if err != nil {
		return TokenPair{}, Profile{}, err
	}
	return pair, NewProfile(ident), nil
}

// Login authenticates credentials and issues a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller. Existing
// sessions stay valid; concurrent logins from several devices are allowed.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return TokenPair{}, Profile{}, ErrUnauthorized
	}
	ident, err := s.store.Identities(ctx).FindByEmail(ctx, email)
	if err != nil {
		// Only a confirmed miss is a credential failure; store outages
		// must surface as server errors, not 401s.
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, Profile{}, ErrUnauthorized
		}
		return TokenPair{}, Profile{}, err
	}
	if ident == nil {
		return TokenPair{}, Profile{}, ErrUnauthorized
	}
	if !ident.Active {
		return TokenPair{}, Profile{}, ErrUnauthorized
	}
	if !VerifyPassword(ident.PasswordHash, password) {
		return TokenPair{}, Profile{}, ErrUnauthorized
	}
	pair, err := s.mintPair(ctx, ident)
	if err != nil {
		return TokenPair{}, Profile{}, err
	}
	return pair, NewProfile(ident), nil
}

// AccessGrant is the result of a refresh exchange: a new access token only.
// The presented refresh token is not rotated and stays exchangeable until
// its own expiry or explicit logout.
type AccessGrant struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Refresh exchanges a live refresh token for a new access token. The token
// must verify cryptographically, its ledger record must still exist and be
// unexpired, and the identity must still exist and be active.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AccessGrant, error) {
	claims := s.codec.VerifyTyped(refreshToken, TokenTypeRefresh)
	if claims == nil {
		return AccessGrant{}, ErrUnauthorized
	}
	rec, err := s.store.RefreshTokens(ctx).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AccessGrant{}, ErrUnauthorized
		}
		return AccessGrant{}, err
	}
	if rec == nil {
		return AccessGrant{}, ErrUnauthorized
	}
	if s.now().After(rec.ExpiresAt) {
		return AccessGrant{}, ErrUnauthorized
	}
	ident, err := s.store.Identities(ctx).Find(ctx, rec.IdentityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AccessGrant{}, ErrUnauthorized
		}
		return AccessGrant{}, err
	}
	if ident == nil {
		return AccessGrant{}, ErrUnauthorized
	}
	if !ident.Active {
		return AccessGrant{}, ErrUnauthorized
	}
	token, exp, err := s.codec.SignAccess(ident)
	if err != nil {
		return AccessGrant{}, err
	}
	return AccessGrant{AccessToken: token, ExpiresAt: exp}, nil
}

// Logout revokes the presented refresh token by deleting its ledger record.
// It deliberately succeeds even when the token is unknown or already
// revoked so clients can always clear local state.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	rec, err := s.store.RefreshTokens(ctx).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if rec == nil {
		return nil
	}
	return s.store.RefreshTokens(ctx).Delete(ctx, rec.ID)
}

// Me returns the sanitized identity projection including resolved role
// permissions.
func (s *Service) Me(ctx context.Context, identityID string) (Profile, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return Profile{}, ErrUnauthorized
	}
	ident, err := s.store.Identities(ctx).Find(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	profile := NewProfile(ident)
	if ident.RoleID != "" {
		role, err := s.store.Roles(ctx).Find(ctx, ident.RoleID)
		if err == nil && role != nil {
			profile.Permissions = role.Permissions
		}
	}
	return profile, nil
}

// StaffParams carries input for provisioning a staff identity.
type StaffParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateStaff provisions a team-member identity inside the given tenant.
// No tokens are issued; the staff member logs in with their own credentials.
func (s *Service) CreateStaff(ctx context.Context, tenantID string, params StaffParams) (Profile, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Profile{}, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(params.Password) == "" {
		return Profile{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if existing, err := s.store.Identities(ctx).FindByEmail(ctx, email); err != nil && !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	} else if existing != nil {
		return Profile{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	hash, err := HashPassword(params.Password)
	if err != nil {
		return Profile{}, err
	}
	ident := &Identity{
		ID:           ids.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		Role:         RoleTeamMember,
		IsAdmin:      false,
		Active:       true,
	}
	if err := s.store.Identities(ctx).Create(ctx, ident); err != nil {
		return Profile{}, err
	}
	return NewProfile(ident), nil
}

// DeleteStaff hard-deletes a team-member identity in the caller's tenant and
// revokes all of its refresh tokens. Admin identities cannot be deleted this
// way.
func (s *Service) DeleteStaff(ctx context.Context, tenantID, identityID string) error {
	ident, err := s.store.Identities(ctx).Find(ctx, identityID)
	if err != nil {
		return err
	}
	if ident.TenantID != tenantID {
		// Cross-tenant ids are indistinguishable from unknown ones.
		return ErrNotFound
	}
	if ident.Role != RoleTeamMember {
		return fmt.Errorf("%w: only team members can be deleted", ErrForbidden)
	}
	if err := s.store.RefreshTokens(ctx).DeleteByIdentity(ctx, ident.ID); err != nil {
		return err
	}
	return s.store.Identities(ctx).Delete(ctx, ident.ID)
}

func (s *Service) mintPair(ctx context.Context, ident *Identity) (TokenPair, error) {
	accessToken, accessExp, err := s.codec.SignAccess(ident)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, refreshExp, err := s.codec.SignRefresh(ident)
	if err != nil {
		return TokenPair{}, err
	}
	rec := &RefreshTokenRecord{
		ID:         uuid.NewString(),
		IdentityID: ident.ID,
		Token:      refreshToken,
		ExpiresAt:  refreshExp,
	}
	if err := s.store.RefreshTokens(ctx).Create(ctx, rec); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}
