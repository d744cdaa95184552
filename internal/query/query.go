// Package query implements the pure filtering and pagination engine shared
// by every in-memory data source: the client's local fallback store and the
// server's memory-backed store both delegate here, and the remote query
// parameters mirror the same predicates.
//
// The engine never reorders its input. Callers own collection ordering
// (logs are reverse-chronological, alerts are insertion-order-at-front),
// and slices returned by Paginate preserve it.
package query

import (
	"strings"

	"github.com/sentinellite/sentinel/internal/model"
)

// LogFilter holds the optional predicates for a log query. Zero-value
// fields are inactive.
type LogFilter struct {
	// Source matches exactly when set.
	Source model.LogSource

	// Status matches exactly when set.
	Status model.LogStatus

	// Search is a case-insensitive substring match over the IP address,
	// event type, and raw evidence text.
	Search string
}

// AlertFilter holds the optional predicates for an alert query.
// Comparisons are case-insensitive so that "critical" and "Critical"
// select the same alerts, matching the remote service's behaviour.
type AlertFilter struct {
	Severity model.Severity
	Status   model.AlertStatus
}

// FilterLogs returns the entries of logs matching f, in input order.
func FilterLogs(logs []model.LogEntry, f LogFilter) []model.LogEntry {
	search := strings.ToLower(f.Search)

	out := make([]model.LogEntry, 0, len(logs))
	for _, l := range logs {
		if f.Source != "" && l.Source != f.Source {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(l.IPAddress), search) &&
			!strings.Contains(strings.ToLower(l.EventType), search) &&
			!strings.Contains(strings.ToLower(l.Raw), search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterAlerts returns the alerts matching f, in input order.
func FilterAlerts(alerts []model.SecurityAlert, f AlertFilter) []model.SecurityAlert {
	out := make([]model.SecurityAlert, 0, len(alerts))
	for _, a := range alerts {
		if f.Severity != "" && !strings.EqualFold(string(a.Severity), string(f.Severity)) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(string(a.Status), string(f.Status)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Paginate slices items for the 1-based page number and page size and
// returns the slice together with the total item count. A page beyond the
// last valid page yields an empty slice, not an error. page < 1 is treated
// as page 1; limit < 1 yields an empty slice with the correct total.
func Paginate[T any](items []T, page, limit int) ([]T, int) {
	total := len(items)
	if limit < 1 {
		return nil, total
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * limit
	if start >= total {
		return nil, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

// TotalPages returns the number of pages needed to hold total items at the
// given page size, rounding up. It is 0 when total is 0.
func TotalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

// trendBuckets are the fixed chart labels with the hour-of-day range each
// one covers. The final 23:59 point closes the series at midnight and
// repeats the tail hour.
var trendBuckets = []struct {
	label    string
	from, to int // inclusive hour range
}{
	{"00:00", 0, 3},
	{"04:00", 4, 7},
	{"08:00", 8, 11},
	{"12:00", 12, 15},
	{"16:00", 16, 19},
	{"20:00", 20, 23},
	{"23:59", 23, 23},
}

// HourHistogram counts logs by UTC hour of day.
func HourHistogram(logs []model.LogEntry) [24]int {
	var hours [24]int
	for _, l := range logs {
		hours[l.Timestamp.UTC().Hour()]++
	}
	return hours
}

// TrendSeries folds an hour histogram into the fixed 7-point series the
// dashboard chart renders.
func TrendSeries(hours [24]int) []model.TrendPoint {
	points := make([]model.TrendPoint, 0, len(trendBuckets))
	for _, b := range trendBuckets {
		count := 0
		for h := b.from; h <= b.to; h++ {
			count += hours[h]
		}
		points = append(points, model.TrendPoint{Time: b.label, Count: count})
	}
	return points
}
