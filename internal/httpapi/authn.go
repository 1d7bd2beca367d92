package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"agencyhub.io/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// RequireAuth extracts and verifies the bearer access token, then attaches
// the decoded claims to the request context. It must run before any role
// guard; the guards themselves never re-verify the token.
func (a *API) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			unauthorized(w)
			return
		}
		claims := a.codec.VerifyTyped(token, auth.TokenTypeAccess)
		if claims == nil {
			unauthorized(w)
			return
		}
		ctx := auth.ContextWithClaims(r.Context(), claims)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateTenant rejects requests that reached a tenant-scoped route without
// claims attached (i.e. RequireAuth was skipped). Tenant scoping itself is
// enforced downstream by storage queries filtering on the claims' tenant id.
func ValidateTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || strings.TrimSpace(claims.TenantID) == "" {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSaasAdmin admits platform operators only.
func RequireSaasAdmin(next http.Handler) http.Handler {
	return requireRole(next, "super admin access required", auth.Role.ManagesPlatform)
}

// RequireAgencyAdmin admits platform operators and tenant administrators.
func RequireAgencyAdmin(next http.Handler) http.Handler {
	return requireRole(next, "agency admin access required", auth.Role.ManagesAgency)
}

// RequireTeamMember admits any staff tier; customers are excluded.
func RequireTeamMember(next http.Handler) http.Handler {
	return requireRole(next, "team member access required", auth.Role.TeamAccess)
}

// DenyCustomerAccess rejects the external-customer tier regardless of any
// other role check on the route.
func DenyCustomerAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if claims.Role.IsCustomer() {
			forbidden(w, "customer access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole is the shared predicate guard. Unknown roles fail closed.
func requireRole(next http.Handler, msg string, allowed func(auth.Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !claims.Role.Valid() || !allowed(claims.Role) {
			forbidden(w, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="agencyhub"`)
	writeError(w, http.StatusUnauthorized, "Invalid or expired token")
}

func forbidden(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusForbidden, msg)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
