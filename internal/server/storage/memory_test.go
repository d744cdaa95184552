package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
)

var seedClock = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func newSeededMemory() *Memory {
	return NewMemory(seedClock, 500)
}

func TestMemoryAuthenticate(t *testing.T) {
	m := newSeededMemory()
	ctx := context.Background()

	user, err := m.Authenticate(ctx, "admin@sentinel.lite", "sentinel2025")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u-1" || user.Role != model.RoleAdmin {
		t.Errorf("user = %+v", user)
	}

	// Case-insensitive email, exact password.
	if _, err := m.Authenticate(ctx, "Admin@Sentinel.Lite", "sentinel2025"); err != nil {
		t.Errorf("mixed-case email rejected: %v", err)
	}
	if _, err := m.Authenticate(ctx, "admin@sentinel.lite", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := m.Authenticate(ctx, "ghost@sentinel.lite", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestMemoryGetUser(t *testing.T) {
	m := newSeededMemory()
	ctx := context.Background()

	user, err := m.GetUser(ctx, "u-2")
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "John Smith" || user.Role != model.RoleAnalyst {
		t.Errorf("user = %+v", user)
	}

	if _, err := m.GetUser(ctx, "u-404"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStats(t *testing.T) {
	m := newSeededMemory()

	stats, err := m.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLogs != 500 || stats.FailedLogins != 100 || stats.SuspiciousEvents != 72 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.TrendData) != 7 {
		t.Errorf("trendData has %d points", len(stats.TrendData))
	}
}

func TestMemoryLogsAndUpdate(t *testing.T) {
	m := newSeededMemory()
	ctx := context.Background()

	page, err := m.Logs(ctx, 1, 20, query.LogFilter{Status: model.StatusSuspicious})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 72 || page.TotalPages != 4 {
		t.Errorf("suspicious page: total=%d pages=%d", page.Total, page.TotalPages)
	}

	reviewed := true
	entry, err := m.UpdateLog(ctx, "log-0042", model.LogUpdate{IsReviewed: &reviewed})
	if err != nil {
		t.Fatal(err)
	}
	if !entry.IsReviewed {
		t.Error("update not applied")
	}

	if _, err := m.UpdateLog(ctx, "log-none", model.LogUpdate{IsReviewed: &reviewed}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryAlertLifecycle(t *testing.T) {
	m := newSeededMemory()
	ctx := context.Background()

	alerts, err := m.Alerts(ctx, query.AlertFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 4 {
		t.Fatalf("seed alerts = %d", len(alerts))
	}

	created, err := m.CreateAlert(ctx, model.AlertDraft{Reason: "Manual triage entry"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Status != model.AlertOpen || created.RiskScore != 50 {
		t.Errorf("created = %+v", created)
	}

	alerts, err = m.Alerts(ctx, query.AlertFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 5 || alerts[0].ID != created.ID {
		t.Errorf("new alert not at front")
	}

	updated, err := m.UpdateAlert(ctx, created.ID, model.AlertFalsePositive)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.AlertFalsePositive {
		t.Errorf("status = %q", updated.Status)
	}

	if _, err := m.UpdateAlert(ctx, "alt-none", model.AlertOpen); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryCreateAlertUsesClock(t *testing.T) {
	m := newSeededMemory()
	creation := seedClock.Add(42 * time.Minute)
	m.clock = func() time.Time { return creation }

	created, err := m.CreateAlert(context.Background(), model.AlertDraft{})
	if err != nil {
		t.Fatal(err)
	}
	if !created.Timestamp.Equal(creation) {
		t.Errorf("timestamp = %v, want %v", created.Timestamp, creation)
	}
}

func TestHashPassword(t *testing.T) {
	a := HashPassword("sentinel2025")
	b := HashPassword("sentinel2025")
	c := HashPassword("Sentinel2025")

	if a != b {
		t.Error("hash is not deterministic")
	}
	if a == c {
		t.Error("distinct passwords collide")
	}
	if a == "sentinel2025" {
		t.Error("password stored in the clear")
	}
}
