package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"agencyhub.io/internal/tenant"
)

func (a *API) handleAdminTenants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	tenants, err := a.tenants.List(r.Context())
	if err != nil {
		serverError(w, r, "admin.tenants.list", err)
		return
	}
	if tenants == nil {
		tenants = []*tenant.Tenant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

// handleAdminTenantScoped serves /v1/admin/tenants/{id} and
// /v1/admin/tenants/{id}/modules.
func (a *API) handleAdminTenantScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/tenants/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		a.adminTenantShow(w, r, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "modules":
		a.adminTenantModules(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (a *API) adminTenantShow(w http.ResponseWriter, r *http.Request, id string) {
	t, err := a.tenants.Find(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, tenant.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid tenant id")
		default:
			serverError(w, r, "admin.tenants.show", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) adminTenantModules(w http.ResponseWriter, r *http.Request, id string) {
	modules, err := a.tenants.Modules(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, tenant.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid tenant id")
		default:
			serverError(w, r, "admin.tenants.modules", err)
		}
		return
	}
	if modules == nil {
		modules = []tenant.Module{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": id,
		"modules":   modules,
	})
}
