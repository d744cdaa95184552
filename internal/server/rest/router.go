package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns the configured chi.Router for the SentinelLite API.
//
// Route layout:
//
//	GET   /api/health          – health check (no authentication)
//	POST  /api/auth/login      – credential exchange (no authentication)
//	POST  /api/auth/logout     – best-effort logout notification (auth)
//	GET   /api/auth/me         – current user (auth)
//	GET   /api/stats           – dashboard aggregate (auth)
//	GET   /api/logs            – paginated, filtered log query (auth)
//	PATCH /api/logs/{id}       – whitelisted log update (auth)
//	GET   /api/alerts          – filtered alert list (auth)
//	PATCH /api/alerts/{id}     – alert status transition (auth)
//	POST  /api/alerts          – create alert (auth)
//
// secret signs and verifies bearer tokens. Pass nil to disable
// authentication entirely (useful in handler tests).
func NewRouter(srv *Server, secret []byte, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Built-in chi middleware for observability and hygiene.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Post("/auth/login", srv.handleLogin)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			if secret != nil {
				r.Use(AuthMiddleware(secret, logger))
			}

			r.Post("/auth/logout", srv.handleLogout)
			r.Get("/auth/me", srv.handleMe)
			r.Get("/stats", srv.handleStats)
			r.Get("/logs", srv.handleGetLogs)
			r.Patch("/logs/{id}", srv.handleUpdateLog)
			r.Get("/alerts", srv.handleGetAlerts)
			r.Patch("/alerts/{id}", srv.handleUpdateAlert)
			r.Post("/alerts", srv.handleCreateAlert)
		})
	})

	return r
}
