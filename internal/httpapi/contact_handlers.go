package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"agencyhub.io/internal/audit"
	"agencyhub.io/internal/auth"
	"agencyhub.io/internal/crm"
)

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

func (a *API) handleContacts(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		contacts, err := a.contacts.List(r.Context(), claims.TenantID)
		if err != nil {
			serverError(w, r, "contacts.list", err)
			return
		}
		if contacts == nil {
			contacts = []*crm.Contact{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
	case http.MethodPost:
		var req createContactRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		contact, err := a.contacts.Create(r.Context(), claims.TenantID, crm.CreateParams{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
		})
		if err != nil {
			if errors.Is(err, crm.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "contact name is required")
				return
			}
			serverError(w, r, "contacts.create", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "contacts.create", map[string]any{
			"contact_id": contact.ID,
		})
		writeJSON(w, http.StatusCreated, contact)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleContactScoped serves DELETE /v1/contacts/{id}.
func (a *API) handleContactScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/contacts/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	if err := a.contacts.Delete(r.Context(), claims.TenantID, id); err != nil {
		switch {
		case errors.Is(err, crm.ErrNotFound):
			writeError(w, http.StatusNotFound, "contact not found")
		case errors.Is(err, crm.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid contact id")
		default:
			serverError(w, r, "contacts.delete", err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "contacts.delete", map[string]any{
		"contact_id": id,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "contact deleted"})
}
