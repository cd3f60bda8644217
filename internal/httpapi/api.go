// Package httpapi is the HTTP boundary adapter: it translates requests into
// engine calls and typed engine errors into transport statuses. It never
// echoes store internals, password hashes, or the signing secret.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"authgate.org/internal/auth"
	"authgate.org/internal/obs"
)

const serviceName = "authgate-api"

// Pinger reports reachability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe checks both stores independently; the service is ready only
// when each one is reachable.
type ReadyProbe struct {
	Users    Pinger
	Sessions Pinger
}

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	svc     *auth.Service
	probe   ReadyProbe
	version string
}

// New wires the route table.
func New(svc *auth.Service, probe ReadyProbe, version string) *API {
	a := &API{
		mux:     http.NewServeMux(),
		svc:     svc,
		probe:   probe,
		version: version,
	}

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/profile", a.handleProfile)

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = LoggingJSON(h)
	h = obs.Instrument(h)
	h = RequestID(h)
	return h
}

// Healthz is the liveness probe.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

// Ready reports store reachability for both stores independently. Overall
// status is ready only when both report reachable.
func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]any{
		"status":   "ready",
		"postgres": "ok",
		"redis":    "ok",
	}
	if a.probe.Users != nil {
		if err := a.probe.Users.Ping(ctx); err != nil {
			payload["postgres"] = "unreachable"
		}
	}
	if a.probe.Sessions != nil {
		if err := a.probe.Sessions.Ping(ctx); err != nil {
			payload["redis"] = "unreachable"
		}
	}
	if payload["postgres"] != "ok" || payload["redis"] != "ok" {
		payload["status"] = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, payload)
}

// Info returns service metadata.
func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
