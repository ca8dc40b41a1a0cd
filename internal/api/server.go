// Package api provides the local REST API for sysproxy.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rennerdo30/sysproxy/internal/config"
	"github.com/rennerdo30/sysproxy/internal/logging"
	"github.com/rennerdo30/sysproxy/internal/metrics"
	"github.com/rennerdo30/sysproxy/internal/pac"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
	"github.com/rennerdo30/sysproxy/internal/version"
)

const maxBodySize = 64 << 10

// API serves proxy settings over HTTP.
type API struct {
	manager     sysproxy.Manager
	profiles    []config.ProfileConfig
	metrics     *metrics.Metrics
	metricsPath string
	token       string

	// writes serializes changes made through this API. Other processes can
	// still change the settings underneath.
	writes sync.Mutex
}

// Config holds API configuration.
type Config struct {
	Manager     sysproxy.Manager
	Profiles    []config.ProfileConfig
	Metrics     *metrics.Metrics // nil disables the metrics endpoint
	MetricsPath string
	Token       string
}

// New creates a new API server.
func New(cfg Config) *API {
	path := cfg.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	return &API{
		manager:     cfg.Manager,
		profiles:    cfg.Profiles,
		metrics:     cfg.Metrics,
		metricsPath: path,
		token:       cfg.Token,
	}
}

// Handler returns the HTTP handler for the API.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(securityHeadersMiddleware)

	// PAC clients cannot send credentials.
	r.Get("/proxy.pac", a.handlePAC)

	r.Group(func(r chi.Router) {
		if a.token != "" {
			r.Use(a.authMiddleware)
		}

		r.Get("/api/v1/health", a.handleHealth)
		r.Get("/api/v1/version", a.handleVersion)
		r.Get("/api/v1/resolve", a.handleResolve)

		r.Route("/api/v1/proxy", func(r chi.Router) {
			r.Get("/", a.handleGetProxy)
			r.Delete("/", a.handleDisable)
			r.Get("/manual", a.handleGetManual)
			r.Put("/manual", a.handleSetManual)
			r.Get("/auto", a.handleGetAuto)
			r.Put("/auto", a.handleSetAuto)
		})

		r.Route("/api/v1/profiles", func(r chi.Router) {
			r.Get("/", a.handleListProfiles)
			r.Post("/{name}/apply", a.handleApplyProfile)
		})

		if a.metrics != nil {
			r.Handle(a.metricsPath, a.metrics.Handler())
		}
	})

	return r
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger puts a request scoped logger into the context and logs
// each request once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logging.WithComponent("api").With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(logging.WithContext(r.Context(), log)))

		log.Debug("Request handled", "status", ww.Status(), "duration", time.Since(start))
	})
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type proxyResponse struct {
	Mode   string               `json:"mode"`
	Manual sysproxy.ManualProxy `json:"manual"`
	Auto   sysproxy.AutoProxy   `json:"auto"`
}

type appliedResponse struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"supported": sysproxy.Supported(),
		"time":      time.Now().Format(time.RFC3339),
	})
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo(sysproxy.Supported()))
}

func (a *API) handleGetProxy(w http.ResponseWriter, r *http.Request) {
	snap, err := sysproxy.Capture(a.manager)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proxyResponse{
		Mode:   snap.Mode().String(),
		Manual: snap.Manual,
		Auto:   snap.Auto,
	})
}

// handleResolve reports the route for the host query parameter.
func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "host parameter required"})
		return
	}

	snap, err := sysproxy.Capture(a.manager)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pac.Resolve(snap, host))
}

// handlePAC serves the manual settings as a PAC script.
func (a *API) handlePAC(w http.ResponseWriter, r *http.Request) {
	p, err := a.manager.GetManualProxy()
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pac.ContentType)
	w.Header().Set("Content-Disposition", "inline; filename=\"proxy.pac\"")
	w.Write([]byte(pac.Generate(p)))
}

func (a *API) handleGetManual(w http.ResponseWriter, r *http.Request) {
	p, err := a.manager.GetManualProxy()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleSetManual(w http.ResponseWriter, r *http.Request) {
	var p sysproxy.ManualProxy
	if !decodeBody(w, r, &p) {
		return
	}

	mode := sysproxy.ModeDirect
	if p.Enable {
		mode = sysproxy.ModeManual
	}
	a.write(w, r, mode, func() error { return a.manager.SetManualProxy(p) })
}

func (a *API) handleGetAuto(w http.ResponseWriter, r *http.Request) {
	p, err := a.manager.GetAutoProxy()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleSetAuto(w http.ResponseWriter, r *http.Request) {
	var p sysproxy.AutoProxy
	if !decodeBody(w, r, &p) {
		return
	}

	mode := sysproxy.ModeDirect
	if p.Enable {
		mode = sysproxy.ModeAuto
	}
	a.write(w, r, mode, func() error { return a.manager.SetAutoProxy(p) })
}

func (a *API) handleDisable(w http.ResponseWriter, r *http.Request) {
	a.write(w, r, sysproxy.ModeDirect, func() error {
		return a.manager.SetManualProxy(sysproxy.ManualProxy{})
	})
}

func (a *API) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := make([]config.ProfileConfig, len(a.profiles))
	copy(profiles, a.profiles)
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	writeJSON(w, http.StatusOK, profiles)
}

func (a *API) handleApplyProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var profile *config.ProfileConfig
	for i := range a.profiles {
		if a.profiles[i].Name == name {
			profile = &a.profiles[i]
			break
		}
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found: " + name})
		return
	}

	state, err := profile.State()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	a.write(w, r, state.Mode, func() error { return sysproxy.ApplyState(a.manager, state) })
}

// write runs fn under the write lock and reports the outcome.
func (a *API) write(w http.ResponseWriter, r *http.Request, mode sysproxy.Mode, fn func() error) {
	a.writes.Lock()
	err := fn()
	a.writes.Unlock()

	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("Proxy settings applied", "mode", mode.String())
	writeJSON(w, http.StatusOK, appliedResponse{Message: "applied", Mode: mode.String()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sysproxy.ErrInvalidProxy):
		status = http.StatusBadRequest
	case errors.Is(err, sysproxy.ErrNotSupported):
		status = http.StatusNotImplemented
	case errors.Is(err, sysproxy.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	logging.FromContext(r.Context()).Warn("Request failed", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
