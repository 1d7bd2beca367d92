package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"agencyhub.io/internal/audit"
	"agencyhub.io/internal/auth"
)

type createStaffRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (a *API) handleStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	var req createStaffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.auth.CreateStaff(r.Context(), claims.TenantID, auth.StaffParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, auth.ErrConflict):
			writeError(w, http.StatusBadRequest, userFacing(err))
		default:
			serverError(w, r, "staff.create", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "staff.create", map[string]any{
		"staff_id": profile.ID,
		"email":    profile.Email,
	})
	writeJSON(w, http.StatusCreated, profile)
}

// handleStaffScoped serves DELETE /v1/staff/{id}.
func (a *API) handleStaffScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/staff/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	if err := a.auth.DeleteStaff(r.Context(), claims.TenantID, id); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, http.StatusNotFound, "staff member not found")
		case errors.Is(err, auth.ErrForbidden):
			writeError(w, http.StatusForbidden, "only team members can be deleted")
		default:
			serverError(w, r, "staff.delete", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "staff.delete", map[string]any{
		"staff_id": id,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "staff member deleted"})
}
