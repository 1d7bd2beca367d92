package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour

	// clockLeeway absorbs small clock skew at expiry boundaries.
	clockLeeway = 5 * time.Second
)

// TokenType distinguishes the two token flavors sharing one signing key.
// Access paths reject refresh tokens and vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the signed claim set carried by both token flavors.
type Claims struct {
	TenantID  string `json:"tid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IdentityID returns the subject claim.
func (c *Claims) IdentityID() string {
	return c.Subject
}

// Codec signs and verifies HS256 bearer tokens. The secret is injected at
// construction; the codec never reads ambient process state.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithIssuer sets the issuer claim stamped into tokens.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = strings.TrimSpace(issuer)
	}
}

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec around the shared signing secret. The secret
// must be identical across every process verifying issued tokens.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccess issues a short-lived stateless access token for the identity.
func (c *Codec) SignAccess(ident *Identity) (string, time.Time, error) {
	return c.sign(ident, TokenTypeAccess, c.accessTTL)
}

// SignRefresh issues a long-lived refresh token for the identity. Callers
// must additionally persist the token through the refresh-token store; the
// signature alone does not make it exchangeable.
func (c *Codec) SignRefresh(ident *Identity) (string, time.Time, error) {
	return c.sign(ident, TokenTypeRefresh, c.refreshTTL)
}

func (c *Codec) sign(ident *Identity, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	if ident == nil || ident.ID == "" {
		return "", time.Time{}, errors.New("auth: identity is required")
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		TenantID:  ident.TenantID,
		Email:     ident.Email,
		Role:      ident.Role,
		IsAdmin:   ident.IsAdmin,
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry and returns the claims, or nil on any
// failure (malformed, expired, bad signature, unknown role). It never
// panics or returns partial claims.
func (c *Codec) Verify(token string) *Claims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil
	}
	if !claims.Role.Valid() {
		return nil
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil
	}
	return claims
}

// VerifyTyped verifies the token and additionally enforces the token_type
// claim, closing the access/refresh confusion gap.
func (c *Codec) VerifyTyped(token string, typ TokenType) *Claims {
	claims := c.Verify(token)
	if claims == nil {
		return nil
	}
	if claims.TokenType != string(typ) {
		return nil
	}
	return claims
}
