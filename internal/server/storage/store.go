// Package storage provides the persistence layer for the SentinelLite
// backend server. Two implementations satisfy Store: an in-memory store
// seeded with the demo dataset (the default for development) and a
// PostgreSQL store for production deployments.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
)

// ErrInvalidCredentials is returned by Authenticate when the email is
// unknown or the password does not match. The two cases are deliberately
// indistinguishable.
var ErrInvalidCredentials = errors.New("storage: invalid credentials")

// Store is the server-side data access contract consumed by the REST
// handlers. Missing entity ids report model.ErrNotFound.
type Store interface {
	// Authenticate verifies email/password and returns the user.
	Authenticate(ctx context.Context, email, password string) (model.User, error)

	// GetUser returns the user with the given id.
	GetUser(ctx context.Context, id string) (model.User, error)

	// Stats recomputes the dashboard aggregate from the current logs.
	Stats(ctx context.Context) (model.SecurityStats, error)

	// Logs returns one filtered page of log entries, newest first.
	Logs(ctx context.Context, page, limit int, f query.LogFilter) (model.LogPage, error)

	// UpdateLog applies the whitelisted update and returns the entry.
	UpdateLog(ctx context.Context, id string, upd model.LogUpdate) (model.LogEntry, error)

	// Alerts returns the alerts matching f, most recent first.
	Alerts(ctx context.Context, f query.AlertFilter) ([]model.SecurityAlert, error)

	// UpdateAlert replaces the alert's status and returns the alert.
	UpdateAlert(ctx context.Context, id string, status model.AlertStatus) (model.SecurityAlert, error)

	// CreateAlert materialises draft with the creation defaults and
	// inserts it at the front of the collection.
	CreateAlert(ctx context.Context, draft model.AlertDraft) (model.SecurityAlert, error)
}

// HashPassword returns the hex SHA-256 digest used for stored passwords.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
