package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(DeviceCookie)

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Voter pages (public)
	r.Get("/", h.handleIndex)
	r.Get("/vote", h.handleVotePage)
	r.Get("/results", h.handleResultsPage)

	// Session API (public)
	r.Get("/api/session", h.handleGetSession)
	r.Post("/api/session/start", h.handleStartSession)
	r.Post("/api/session/answer", h.handleAnswer)
	r.Post("/api/session/submit", h.handleSubmit)
	r.Post("/api/session/reset", h.handleResetSession)
	r.Get("/api/logo", h.handleGetLogo)

	// Auth routes (public)
	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/admin", h.handleAdminPanel)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Live submission events
		r.Get("/ws", h.Hub.ServeWs)

		// Submissions
		r.Get("/api/admin/submissions", h.handleGetSubmissions)
		r.Get("/api/admin/submissions/export.csv", h.handleExportCSV)
		r.Delete("/api/admin/submissions", h.handleClearSubmissions)
		r.Get("/api/admin/stats", h.handleGetStats)

		// Logo
		r.Get("/api/admin/logo", h.handleGetAdminLogo)
		r.Put("/api/admin/logo", h.handleSetLogo)
		r.Delete("/api/admin/logo", h.handleClearLogo)

		// Devices
		r.Post("/api/admin/unlock-device", h.handleUnlockDevice)

		// Remote store
		r.Get("/api/admin/store-config", h.handleGetStoreConfig)
		r.Put("/api/admin/store-config", h.handleSetStoreConfig)

		// Share QR
		r.Get("/api/admin/share-qr", h.handleShareQR)

		// HTTP logging toggle
		r.Post("/api/admin/http-logging", h.handleSetHTTPLogging)
	})

	return r
}
