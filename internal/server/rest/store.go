package rest

import (
	"context"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
)

// Store is the data-access contract the REST handlers depend on. Both
// storage implementations (memory and PostgreSQL) satisfy it; tests
// substitute a mock.
type Store interface {
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	Stats(ctx context.Context) (model.SecurityStats, error)
	Logs(ctx context.Context, page, limit int, f query.LogFilter) (model.LogPage, error)
	UpdateLog(ctx context.Context, id string, upd model.LogUpdate) (model.LogEntry, error)
	Alerts(ctx context.Context, f query.AlertFilter) ([]model.SecurityAlert, error)
	UpdateAlert(ctx context.Context, id string, status model.AlertStatus) (model.SecurityAlert, error)
	CreateAlert(ctx context.Context, draft model.AlertDraft) (model.SecurityAlert, error)
}
