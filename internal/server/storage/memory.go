package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
	"github.com/sentinellite/sentinel/internal/synthetic"
)

// account is a stored user with its password hash.
type account struct {
	user         model.User
	passwordHash string
}

// Memory is the in-memory Store used when no DSN is configured. It is
// seeded with the demo dataset and safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]account // keyed by lowercase email
	logs     []model.LogEntry
	alerts   []model.SecurityAlert
	clock    func() time.Time
}

// NewMemory builds a Memory store seeded with the demo users, logCount
// log entries anchored at now, and the four seed alerts.
func NewMemory(now time.Time, logCount int) *Memory {
	accounts := make(map[string]account)
	for email, seed := range synthetic.SeedUsers() {
		accounts[email] = account{
			user:         seed.User,
			passwordHash: HashPassword(seed.Password),
		}
	}
	return &Memory{
		accounts: accounts,
		logs:     synthetic.GenerateLogs(logCount, now),
		alerts:   synthetic.SeedAlerts(now),
		clock:    time.Now,
	}
}

// Authenticate implements Store.
func (m *Memory) Authenticate(_ context.Context, email, password string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[strings.ToLower(email)]
	if !ok || acct.passwordHash != HashPassword(password) {
		return model.User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

// GetUser implements Store.
func (m *Memory) GetUser(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, acct := range m.accounts {
		if acct.user.ID == id {
			return acct.user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

// Stats implements Store.
func (m *Memory) Stats(_ context.Context) (model.SecurityStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := model.SecurityStats{TotalLogs: len(m.logs)}
	ips := make(map[string]struct{}, len(m.logs))
	for _, l := range m.logs {
		if l.Status == model.StatusSuspicious {
			stats.SuspiciousEvents++
		}
		if strings.Contains(l.EventType, "Failed Login") {
			stats.FailedLogins++
		}
		ips[l.IPAddress] = struct{}{}
	}
	stats.UniqueIPs = len(ips)
	stats.TrendData = query.TrendSeries(query.HourHistogram(m.logs))
	return stats, nil
}

// Logs implements Store.
func (m *Memory) Logs(_ context.Context, page, limit int, f query.LogFilter) (model.LogPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := query.FilterLogs(m.logs, f)
	data, total := query.Paginate(filtered, page, limit)

	out := make([]model.LogEntry, len(data))
	copy(out, data)

	return model.LogPage{
		Data:       out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: query.TotalPages(total, limit),
	}, nil
}

// UpdateLog implements Store.
func (m *Memory) UpdateLog(_ context.Context, id string, upd model.LogUpdate) (model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.logs {
		if m.logs[i].ID != id {
			continue
		}
		if upd.IsReviewed != nil {
			m.logs[i].IsReviewed = *upd.IsReviewed
		}
		return m.logs[i], nil
	}
	return model.LogEntry{}, model.ErrNotFound
}

// Alerts implements Store.
func (m *Memory) Alerts(_ context.Context, f query.AlertFilter) ([]model.SecurityAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := query.FilterAlerts(m.alerts, f)
	out := make([]model.SecurityAlert, len(filtered))
	copy(out, filtered)
	return out, nil
}

// UpdateAlert implements Store.
func (m *Memory) UpdateAlert(_ context.Context, id string, status model.AlertStatus) (model.SecurityAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.alerts {
		if m.alerts[i].ID != id {
			continue
		}
		m.alerts[i].Status = status
		return m.alerts[i], nil
	}
	return model.SecurityAlert{}, model.ErrNotFound
}

// CreateAlert implements Store.
func (m *Memory) CreateAlert(_ context.Context, draft model.AlertDraft) (model.SecurityAlert, error) {
	alert := model.NewAlertFromDraft("alt-"+uuid.NewString()[:8], m.clock().UTC(), draft)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append([]model.SecurityAlert{alert}, m.alerts...)
	return alert, nil
}
