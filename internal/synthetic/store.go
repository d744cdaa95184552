package synthetic

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
)

// Store is the in-memory fallback data source. It owns its collections
// exclusively: nothing is ever merged from the remote service. A Store is
// safe for concurrent use; overlapping mutations on the same id resolve
// last-write-wins.
//
// Construct one per process (or per test — fresh instances give test
// isolation) with NewStore.
type Store struct {
	mu     sync.Mutex
	logs   []model.LogEntry
	alerts []model.SecurityAlert
}

// NewStore seeds a fallback dataset anchored at now: 500 log entries and
// the four seed alerts. The same now always produces the same store.
func NewStore(now time.Time) *Store {
	return &Store{
		logs:   GenerateLogs(SeedLogCount, now),
		alerts: SeedAlerts(now),
	}
}

// Authenticate checks email/password against the seed accounts. The email
// comparison is case-insensitive, the password exact.
func (s *Store) Authenticate(email, password string) (model.User, bool) {
	c, ok := seedCredentials[strings.ToLower(email)]
	if !ok || c.password != password {
		return model.User{}, false
	}
	return c.user, true
}

// Stats recomputes the dashboard aggregate from the current log
// collection. The result is a view; it is never stored.
func (s *Store) Stats() model.SecurityStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.SecurityStats{TotalLogs: len(s.logs)}
	ips := make(map[string]struct{}, len(s.logs))
	for _, l := range s.logs {
		if l.Status == model.StatusSuspicious {
			stats.SuspiciousEvents++
		}
		if strings.Contains(l.EventType, "Failed Login") {
			stats.FailedLogins++
		}
		ips[l.IPAddress] = struct{}{}
	}
	stats.UniqueIPs = len(ips)
	stats.TrendData = query.TrendSeries(query.HourHistogram(s.logs))
	return stats
}

// Logs filters and paginates the log collection, preserving its
// reverse-chronological order.
func (s *Store) Logs(page, limit int, f query.LogFilter) model.LogPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := query.FilterLogs(s.logs, f)
	data, total := query.Paginate(filtered, page, limit)

	// Copy so callers never alias the store's backing array.
	out := make([]model.LogEntry, len(data))
	copy(out, data)

	return model.LogPage{
		Data:       out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: query.TotalPages(total, limit),
	}
}

// UpdateLog applies the whitelisted fields of upd to the entry with the
// given id and returns the updated entry. A missing id reports
// model.ErrNotFound.
func (s *Store) UpdateLog(id string, upd model.LogUpdate) (model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.logs {
		if s.logs[i].ID != id {
			continue
		}
		if upd.IsReviewed != nil {
			s.logs[i].IsReviewed = *upd.IsReviewed
		}
		return s.logs[i], nil
	}
	return model.LogEntry{}, model.ErrNotFound
}

// Alerts returns the alerts matching f, newest-first.
func (s *Store) Alerts(f query.AlertFilter) []model.SecurityAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := query.FilterAlerts(s.alerts, f)
	out := make([]model.SecurityAlert, len(filtered))
	copy(out, filtered)
	return out
}

// UpdateAlert replaces the status of the alert with the given id. status
// must be one of the four defined states; a missing id reports
// model.ErrNotFound.
func (s *Store) UpdateAlert(id string, status model.AlertStatus) (model.SecurityAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		s.alerts[i].Status = status
		return s.alerts[i], nil
	}
	return model.SecurityAlert{}, model.ErrNotFound
}

// CreateAlert materialises draft with the creation defaults and inserts it
// at the front of the collection, keeping most-recent-first ordering.
func (s *Store) CreateAlert(now time.Time, draft model.AlertDraft) model.SecurityAlert {
	alert := model.NewAlertFromDraft(newAlertID(), now, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]model.SecurityAlert{alert}, s.alerts...)
	return alert
}

// Health reports the simulated service map served in fallback mode.
func (s *Store) Health(now time.Time) model.HealthStatus {
	return model.HealthStatus{
		Status:    "mock-mode",
		Timestamp: now,
		Version:   "1.0.0-mock",
		Services: map[string]string{
			"database":       "simulated",
			"log_forwarder":  "simulated",
			"ids_ruleset":    "v2.4.1",
			"network_sentry": "simulated",
		},
	}
}

// newAlertID returns a fresh "alt-" prefixed identifier.
func newAlertID() string {
	return "alt-" + uuid.NewString()[:8]
}
