package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"agencyhub.io/internal/audit"
	"agencyhub.io/internal/auth"
	"agencyhub.io/internal/obs"
)

const invalidCredentials = "Invalid credentials"

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             auth.Profile `json:"user"`
}

type accessResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, profile, err := a.auth.Register(r.Context(), auth.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		obs.CountAuthAttempt("register", "failure")
		switch {
		case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, auth.ErrConflict):
			writeError(w, http.StatusBadRequest, userFacing(err))
		default:
			serverError(w, r, "register", err)
		}
		return
	}

	obs.CountAuthAttempt("register", "success")
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"identity_id": profile.ID,
		"tenant_id":   profile.TenantID,
		"email":       profile.Email,
	})
	writeJSON(w, http.StatusCreated, sessionResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             profile,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, profile, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.CountAuthAttempt("login", "failure")
		if errors.Is(err, auth.ErrUnauthorized) {
			// Unknown email and wrong password answer identically.
			writeError(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		serverError(w, r, "login", err)
		return
	}

	obs.CountAuthAttempt("login", "success")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"identity_id": profile.ID,
		"tenant_id":   profile.TenantID,
	})
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             profile,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	grant, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		obs.CountAuthAttempt("refresh", "failure")
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		serverError(w, r, "refresh", err)
		return
	}

	obs.CountAuthAttempt("refresh", "success")
	_ = audit.LogEvent(r.Context(), "auth.refresh", nil)
	writeJSON(w, http.StatusOK, accessResponse{
		AccessToken: grant.AccessToken,
		ExpiresAt:   grant.ExpiresAt,
	})
}

// handleLogout always answers 200 so clients can clear local state even
// with a stale or unknown refresh token.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req logoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		serverError(w, r, "logout", err)
		return
	}
	obs.CountAuthAttempt("logout", "success")
	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	profile, err := a.auth.Me(r.Context(), claims.IdentityID())
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusNotFound, "identity not found")
			return
		}
		serverError(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// serverError logs the cause with the request id and hides it from the
// client.
func serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	obs.LogRequest(map[string]any{
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		"level":      "error",
		"msg":        "auth_operation_failed",
		"operation":  op,
		"request_id": RequestIDFromContext(r.Context()),
		"error":      err.Error(),
	})
	writeError(w, http.StatusInternalServerError, "internal error")
}

// userFacing strips the package prefix from sentinel-wrapped messages.
func userFacing(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{auth.ErrInvalidInput, auth.ErrConflict} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
