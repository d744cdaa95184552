package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
	"github.com/sentinellite/sentinel/internal/server/storage"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// invalidCredentialsMsg is the exact message the dashboard shows on a
// rejected login; it is part of the API contract.
const invalidCredentialsMsg = "Invalid security credentials provided."

// Server holds the dependencies needed by the REST handlers.
type Server struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
}

// NewServer creates a Server backed by store. secret signs login tokens;
// tokenTTL <= 0 defaults to 12 hours.
func NewServer(store Store, secret []byte, tokenTTL time.Duration) *Server {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Server{store: store, secret: secret, tokenTTL: tokenTTL}
}

// writeJSON writes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an HTTP error response with a JSON body containing an
// "error" field.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleHealth responds to GET /api/health.
//
// No authentication: the dashboard client probes this endpoint before it
// holds a token to decide between remote and fallback mode.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Services: map[string]string{
			"database":       "operational",
			"log_forwarder":  "running",
			"ids_ruleset":    "v2.4.1",
			"network_sentry": "listening",
		},
	})
}

// handleLogin responds to POST /api/auth/login.
//
// Body: {"email": ..., "password": ...}. On success returns {user, token};
// rejected credentials return HTTP 401 with the contract error message.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	user, err := s.store.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication unavailable")
		return
	}

	token, err := IssueToken(s.secret, user, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// handleLogout responds to POST /api/auth/logout.
//
// Tokens are stateless, so there is nothing to revoke server-side; the
// endpoint exists so clients can notify best-effort before clearing their
// local session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleMe responds to GET /api/auth/me with the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleStats responds to GET /api/stats with the recomputed dashboard
// aggregate.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGetLogs responds to GET /api/logs.
//
// Supported query parameters:
//
//	page    – 1-based page number (default 1)
//	limit   – page size (default 20, max 200)
//	source  – exact LogSource match; "ALL" or absent disables the filter
//	status  – exact LogStatus match; "ALL" or absent disables the filter
//	search  – case-insensitive substring over ipAddress/eventType/raw
//
// Returns HTTP 400 for malformed numbers or unknown enum values.
func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "'page' must be a positive integer")
			return
		}
		page = n
	}

	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "'limit' must be a positive integer")
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	var f query.LogFilter
	if v := q.Get("source"); v != "" && !strings.EqualFold(v, "ALL") {
		src := model.LogSource(v)
		if !src.Valid() {
			writeError(w, http.StatusBadRequest, "'source' must be one of SSH, Web, Auth, System")
			return
		}
		f.Source = src
	}
	if v := q.Get("status"); v != "" && !strings.EqualFold(v, "ALL") {
		st := model.LogStatus(v)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "'status' must be Normal or Suspicious")
			return
		}
		f.Status = st
	}
	f.Search = q.Get("search")

	pageResp, err := s.store.Logs(r.Context(), page, limit, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query logs")
		return
	}
	if pageResp.Data == nil {
		pageResp.Data = []model.LogEntry{}
	}
	writeJSON(w, http.StatusOK, pageResp)
}

// handleUpdateLog responds to PATCH /api/logs/{id}.
//
// The body is the whitelisted update shape; only isReviewed is accepted.
// Returns 404 when the id does not exist.
func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd model.LogUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	entry, err := s.store.UpdateLog(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Log not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update log")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"log":     entry,
	})
}

// handleGetAlerts responds to GET /api/alerts.
//
// Supported query parameters (both optional, case-insensitive; "all"
// disables the filter):
//
//	severity – Low, Medium, High, Critical
//	status   – Open, Isolated, Resolved, False Positive
func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f query.AlertFilter
	if v := q.Get("severity"); v != "" && !strings.EqualFold(v, "all") {
		f.Severity = model.Severity(v)
	}
	if v := q.Get("status"); v != "" && !strings.EqualFold(v, "all") {
		f.Status = model.AlertStatus(v)
	}

	alerts, err := s.store.Alerts(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query alerts")
		return
	}
	// Always a JSON array, never null.
	if alerts == nil {
		alerts = []model.SecurityAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleUpdateAlert responds to PATCH /api/alerts/{id}.
//
// Body: {"status": ...} — the alert's only mutable field. The new status
// must be one of the four defined states. Returns 404 when the id does
// not exist.
func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd model.AlertUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	if !upd.Status.Valid() {
		writeError(w, http.StatusBadRequest, "'status' must be one of Open, Isolated, Resolved, False Positive")
		return
	}

	alert, err := s.store.UpdateAlert(r.Context(), id, upd.Status)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alert":   alert,
	})
}

// handleCreateAlert responds to POST /api/alerts.
//
// The body is an AlertDraft; omitted fields receive the creation defaults
// and the new alert always starts Open. Returns HTTP 201 with the alert.
func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var draft model.AlertDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	if draft.Severity != "" && !draft.Severity.Valid() {
		writeError(w, http.StatusBadRequest, "'severity' must be one of Low, Medium, High, Critical")
		return
	}
	if draft.RiskScore != nil && (*draft.RiskScore < 0 || *draft.RiskScore > 100) {
		writeError(w, http.StatusBadRequest, "'riskScore' must be between 0 and 100")
		return
	}

	alert, err := s.store.CreateAlert(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create alert")
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}
