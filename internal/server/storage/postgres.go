package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/query"
	"github.com/sentinellite/sentinel/internal/synthetic"
)

// ddl is the schema DDL, kept here so the package is self-contained.
// position orders the alert collection: higher values render first, so a
// newly created alert always lands at the front.
const ddl = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL,
    avatar        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS logs (
    id          TEXT PRIMARY KEY,
    ts          TIMESTAMPTZ NOT NULL,
    source      TEXT NOT NULL,
    ip_address  TEXT NOT NULL,
    event_type  TEXT NOT NULL,
    status      TEXT NOT NULL,
    is_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
    raw         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs (ts DESC);

CREATE TABLE IF NOT EXISTS alerts (
    id             TEXT PRIMARY KEY,
    reason         TEXT NOT NULL,
    ts             TIMESTAMPTZ NOT NULL,
    ip_address     TEXT NOT NULL,
    severity       TEXT NOT NULL,
    risk_score     INTEGER NOT NULL,
    rule_triggered TEXT NOT NULL,
    raw_log        TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL,
    position       BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_alerts_position ON alerts (position DESC);
`

// Postgres is the pgx-backed Store for production deployments.
type Postgres struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

// NewPostgres opens a pgxpool connection to connStr, pings the database,
// and applies the schema.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("storage: pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &Postgres{pool: pool, clock: time.Now}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// SeedDemo loads the demo dataset (users, logCount log entries anchored at
// now, seed alerts) when the corresponding tables are empty. It is a no-op
// on a populated database, so restarting the server never duplicates data.
func (p *Postgres) SeedDemo(ctx context.Context, now time.Time, logCount int) error {
	var users int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return fmt.Errorf("storage: count users: %w", err)
	}
	if users == 0 {
		for email, seed := range synthetic.SeedUsers() {
			_, err := p.pool.Exec(ctx, `
				INSERT INTO users (id, name, email, password_hash, role, avatar)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				seed.User.ID, seed.User.Name, email,
				HashPassword(seed.Password), string(seed.User.Role), seed.User.Avatar,
			)
			if err != nil {
				return fmt.Errorf("storage: seed user %s: %w", email, err)
			}
		}
	}

	var logs int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM logs`).Scan(&logs); err != nil {
		return fmt.Errorf("storage: count logs: %w", err)
	}
	if logs == 0 {
		b := &pgx.Batch{}
		for _, l := range synthetic.GenerateLogs(logCount, now) {
			b.Queue(`
				INSERT INTO logs (id, ts, source, ip_address, event_type, status, is_reviewed, raw)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				l.ID, l.Timestamp, string(l.Source), l.IPAddress,
				l.EventType, string(l.Status), l.IsReviewed, l.Raw,
			)
		}
		// Seed alerts oldest-first so the BIGSERIAL position preserves
		// most-recent-first ordering on read.
		alerts := synthetic.SeedAlerts(now)
		for i := len(alerts) - 1; i >= 0; i-- {
			a := alerts[i]
			b.Queue(`
				INSERT INTO alerts (id, reason, ts, ip_address, severity, risk_score, rule_triggered, raw_log, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				a.ID, a.Reason, a.Timestamp, a.IPAddress, string(a.Severity),
				a.RiskScore, a.RuleTriggered, a.RawLog, string(a.Status),
			)
		}
		br := p.pool.SendBatch(ctx, b)
		defer br.Close()
		for i := 0; i < b.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("storage: seed batch exec: %w", err)
			}
		}
	}
	return nil
}

// Authenticate implements Store.
func (p *Postgres) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, avatar
		FROM   users
		WHERE  email = $1`, strings.ToLower(email))

	var u model.User
	var hash, role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &role, &u.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("storage: authenticate: %w", err)
	}
	if hash != HashPassword(password) {
		return model.User{}, ErrInvalidCredentials
	}
	u.Role = model.Role(role)
	return u, nil
}

// GetUser implements Store.
func (p *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, email, role, avatar
		FROM   users
		WHERE  id = $1`, id)

	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("storage: get user %s: %w", id, err)
	}
	u.Role = model.Role(role)
	return u, nil
}

// Stats implements Store. Counts are aggregated in SQL; the trend series
// is folded from an hour-of-day histogram so it matches the in-memory
// implementation bucket for bucket.
func (p *Postgres) Stats(ctx context.Context) (model.SecurityStats, error) {
	var stats model.SecurityStats
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Suspicious'),
		       COUNT(*) FILTER (WHERE event_type LIKE '%Failed Login%'),
		       COUNT(DISTINCT ip_address)
		FROM   logs`).Scan(
		&stats.TotalLogs, &stats.SuspiciousEvents, &stats.FailedLogins, &stats.UniqueIPs,
	)
	if err != nil {
		return model.SecurityStats{}, fmt.Errorf("storage: stats aggregate: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM ts AT TIME ZONE 'UTC')::int, COUNT(*)
		FROM   logs
		GROUP  BY 1`)
	if err != nil {
		return model.SecurityStats{}, fmt.Errorf("storage: stats histogram: %w", err)
	}
	defer rows.Close()

	var hours [24]int
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return model.SecurityStats{}, fmt.Errorf("storage: scan histogram: %w", err)
		}
		if hour >= 0 && hour < 24 {
			hours[hour] = count
		}
	}
	if err := rows.Err(); err != nil {
		return model.SecurityStats{}, fmt.Errorf("storage: histogram rows: %w", err)
	}

	stats.TrendData = query.TrendSeries(hours)
	return stats, nil
}

// Logs implements Store. Filtering happens in SQL with the same semantics
// as query.FilterLogs: exact source/status match, case-insensitive
// substring search over ip_address, event_type, and raw.
func (p *Postgres) Logs(ctx context.Context, page, limit int, f query.LogFilter) (model.LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	where := "WHERE TRUE"
	args := []any{}
	argIdx := 1

	if f.Source != "" {
		where += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, string(f.Source))
		argIdx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(f.Status))
		argIdx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (ip_address ILIKE $%d OR event_type ILIKE $%d OR raw ILIKE $%d)",
			argIdx, argIdx, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM logs " + where
	if err := p.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return model.LogPage{}, fmt.Errorf("storage: count logs: %w", err)
	}

	pageSQL := fmt.Sprintf(`
		SELECT id, ts, source, ip_address, event_type, status, is_reviewed, raw
		FROM   logs
		%s
		ORDER  BY ts DESC, id
		LIMIT  $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := p.pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return model.LogPage{}, fmt.Errorf("storage: query logs: %w", err)
	}
	defer rows.Close()

	data := make([]model.LogEntry, 0, limit)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return model.LogPage{}, fmt.Errorf("storage: scan log: %w", err)
		}
		data = append(data, *l)
	}
	if err := rows.Err(); err != nil {
		return model.LogPage{}, fmt.Errorf("storage: log rows: %w", err)
	}

	return model.LogPage{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: query.TotalPages(total, limit),
	}, nil
}

// UpdateLog implements Store. Only is_reviewed is writable; all other
// columns are immutable after ingestion.
func (p *Postgres) UpdateLog(ctx context.Context, id string, upd model.LogUpdate) (model.LogEntry, error) {
	if upd.IsReviewed == nil {
		// Nothing to change; return the current row.
		row := p.pool.QueryRow(ctx, `
			SELECT id, ts, source, ip_address, event_type, status, is_reviewed, raw
			FROM   logs WHERE id = $1`, id)
		l, err := scanLog(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.LogEntry{}, model.ErrNotFound
			}
			return model.LogEntry{}, fmt.Errorf("storage: get log %s: %w", id, err)
		}
		return *l, nil
	}

	row := p.pool.QueryRow(ctx, `
		UPDATE logs SET is_reviewed = $2
		WHERE  id = $1
		RETURNING id, ts, source, ip_address, event_type, status, is_reviewed, raw`,
		id, *upd.IsReviewed)
	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LogEntry{}, model.ErrNotFound
		}
		return model.LogEntry{}, fmt.Errorf("storage: update log %s: %w", id, err)
	}
	return *l, nil
}

// Alerts implements Store.
func (p *Postgres) Alerts(ctx context.Context, f query.AlertFilter) ([]model.SecurityAlert, error) {
	where := "WHERE TRUE"
	args := []any{}
	argIdx := 1

	if f.Severity != "" {
		where += fmt.Sprintf(" AND LOWER(severity) = LOWER($%d)", argIdx)
		args = append(args, string(f.Severity))
		argIdx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND LOWER(status) = LOWER($%d)", argIdx)
		args = append(args, string(f.Status))
	}

	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, reason, ts, ip_address, severity, risk_score, rule_triggered, raw_log, status
		FROM   alerts
		%s
		ORDER  BY position DESC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []model.SecurityAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// UpdateAlert implements Store.
func (p *Postgres) UpdateAlert(ctx context.Context, id string, status model.AlertStatus) (model.SecurityAlert, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE alerts SET status = $2
		WHERE  id = $1
		RETURNING id, reason, ts, ip_address, severity, risk_score, rule_triggered, raw_log, status`,
		id, string(status))
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SecurityAlert{}, model.ErrNotFound
		}
		return model.SecurityAlert{}, fmt.Errorf("storage: update alert %s: %w", id, err)
	}
	return *a, nil
}

// CreateAlert implements Store. The BIGSERIAL position column places the
// new row at the front of the collection.
func (p *Postgres) CreateAlert(ctx context.Context, draft model.AlertDraft) (model.SecurityAlert, error) {
	alert := model.NewAlertFromDraft("alt-"+uuid.NewString()[:8], p.clock().UTC(), draft)

	_, err := p.pool.Exec(ctx, `
		INSERT INTO alerts (id, reason, ts, ip_address, severity, risk_score, rule_triggered, raw_log, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, alert.Reason, alert.Timestamp, alert.IPAddress, string(alert.Severity),
		alert.RiskScore, alert.RuleTriggered, alert.RawLog, string(alert.Status),
	)
	if err != nil {
		return model.SecurityAlert{}, fmt.Errorf("storage: create alert: %w", err)
	}
	return alert, nil
}

// --- internal helpers ---

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing shared scan
// helpers across single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// scanLog reads one logs row from s.
func scanLog(s scanner) (*model.LogEntry, error) {
	var l model.LogEntry
	var source, status string
	err := s.Scan(&l.ID, &l.Timestamp, &source, &l.IPAddress, &l.EventType, &status, &l.IsReviewed, &l.Raw)
	if err != nil {
		return nil, err
	}
	l.Source = model.LogSource(source)
	l.Status = model.LogStatus(status)
	return &l, nil
}

// scanAlert reads one alerts row from s.
func scanAlert(s scanner) (*model.SecurityAlert, error) {
	var a model.SecurityAlert
	var severity, status string
	err := s.Scan(&a.ID, &a.Reason, &a.Timestamp, &a.IPAddress, &severity,
		&a.RiskScore, &a.RuleTriggered, &a.RawLog, &status)
	if err != nil {
		return nil, err
	}
	a.Severity = model.Severity(severity)
	a.Status = model.AlertStatus(status)
	return &a, nil
}
