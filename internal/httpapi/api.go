package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"agencyhub.io/internal/auth"
	"agencyhub.io/internal/crm"
	"agencyhub.io/internal/obs"
	"agencyhub.io/internal/tenant"
)

// readyProbeTimeout bounds the readiness DB ping.
const readyProbeTimeout = 5 * time.Second

// ReadyProbe checks the database before reporting ready.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()
	return rp.DB.PingContext(ctx)
}

// Deps bundles the collaborators the HTTP layer needs.
type Deps struct {
	Auth     *auth.Service
	Codec    *auth.Codec
	Tenants  *tenant.Service
	Contacts *crm.Service
	Ready    ReadyProbe
	Version  string

	// CORSOrigins lists the allowed browser origins; empty means local
	// development defaults.
	CORSOrigins []string

	// RateBurst/RatePerSecond throttle the credential endpoints.
	RateBurst     int
	RatePerSecond int
}

// API is the HTTP layer.
type API struct {
	mux         *http.ServeMux
	auth        *auth.Service
	codec       *auth.Codec
	tenants     *tenant.Service
	contacts    *crm.Service
	ready       ReadyProbe
	version     string
	corsOrigins []string
}

// New wires the route table. Guard ordering per route: RequireAuth first,
// then ValidateTenant, then the role guard; role guards never re-verify the
// token.
func New(deps Deps) *API {
	a := &API{
		mux:         http.NewServeMux(),
		auth:        deps.Auth,
		codec:       deps.Codec,
		tenants:     deps.Tenants,
		contacts:    deps.Contacts,
		ready:       deps.Ready,
		version:     deps.Version,
		corsOrigins: deps.CORSOrigins,
	}

	burst, perSecond := deps.RateBurst, deps.RatePerSecond
	if burst <= 0 {
		burst = 20
	}
	if perSecond <= 0 {
		perSecond = 10
	}
	// One limiter across all credential routes so login, register and
	// refresh draw from the same per-IP budget.
	limiter := newIPLimiter(burst, perSecond)
	credential := func(h http.HandlerFunc) http.Handler {
		return limiter.middleware(h)
	}

	// health/ready/info/metrics
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	// credential endpoints: public, rate limited
	a.mux.Handle("/v1/auth/register", credential(a.handleRegister))
	a.mux.Handle("/v1/auth/login", credential(a.handleLogin))
	a.mux.Handle("/v1/auth/refresh", credential(a.handleRefresh))

	// authenticated auth surface
	a.mux.Handle("/v1/auth/logout", chain(http.HandlerFunc(a.handleLogout), a.RequireAuth))
	a.mux.Handle("/v1/auth/me", chain(http.HandlerFunc(a.handleMe), a.RequireAuth))

	// SaaS-admin surface
	a.mux.Handle("/v1/admin/tenants", chain(http.HandlerFunc(a.handleAdminTenants),
		a.RequireAuth, ValidateTenant, RequireSaasAdmin))
	a.mux.Handle("/v1/admin/tenants/", chain(http.HandlerFunc(a.handleAdminTenantScoped),
		a.RequireAuth, ValidateTenant, RequireSaasAdmin))

	// staff management (agency admins; customers never reach it)
	a.mux.Handle("/v1/staff", chain(http.HandlerFunc(a.handleStaff),
		a.RequireAuth, ValidateTenant, DenyCustomerAccess, RequireAgencyAdmin))
	a.mux.Handle("/v1/staff/", chain(http.HandlerFunc(a.handleStaffScoped),
		a.RequireAuth, ValidateTenant, DenyCustomerAccess, RequireAgencyAdmin))

	// tenant-scoped contacts
	a.mux.Handle("/v1/contacts", chain(http.HandlerFunc(a.handleContacts),
		a.RequireAuth, ValidateTenant, DenyCustomerAccess, RequireTeamMember))
	a.mux.Handle("/v1/contacts/", chain(http.HandlerFunc(a.handleContactScoped),
		a.RequireAuth, ValidateTenant, DenyCustomerAccess, RequireTeamMember))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware stack around the route table.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = CORSHandler(a.corsOrigins)(h)
	h = RequestID(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "agencyhub-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "agencyhub-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

// chain applies middlewares so the first one listed runs first.
func chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
