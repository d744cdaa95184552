// Package model defines the SentinelLite domain entities and their closed
// enumerations. The JSON field names and enum wire values are part of the
// dashboard API contract and must not change: both the remote service and
// the local fallback dataset produce exactly these shapes.
//
// Mutability rules are enforced at the type level: a LogEntry's status is
// assigned at ingestion and never changes (only IsReviewed mutates, via
// LogUpdate), and a SecurityAlert's only mutable field is its status.
package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned by any store or client operation whose target
// entity id does not exist. Updates against a missing id always report it;
// they never succeed silently.
var ErrNotFound = errors.New("entity not found")

// Role is the access level of a dashboard user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
)

// LogSource identifies the subsystem that produced a log entry.
type LogSource string

const (
	SourceSSH    LogSource = "SSH"
	SourceWeb    LogSource = "Web"
	SourceAuth   LogSource = "Auth"
	SourceSystem LogSource = "System"
)

// LogSources lists all valid sources in the round-robin order used by the
// seed generator.
var LogSources = []LogSource{SourceSSH, SourceWeb, SourceAuth, SourceSystem}

// LogStatus is the detection verdict assigned to a log entry at ingestion.
// It is immutable for the lifetime of the entry.
type LogStatus string

const (
	StatusNormal     LogStatus = "Normal"
	StatusSuspicious LogStatus = "Suspicious"
)

// Severity is the urgency level of a security alert.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// AlertStatus is the triage state of a security alert. Open is the initial
// state; transitions between any two states are unconditional single-step
// writes, so no ordering is enforced here.
type AlertStatus string

const (
	AlertOpen          AlertStatus = "Open"
	AlertIsolated      AlertStatus = "Isolated"
	AlertResolved      AlertStatus = "Resolved"
	AlertFalsePositive AlertStatus = "False Positive"
)

// Valid reports whether s is one of the four defined alert states.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertOpen, AlertIsolated, AlertResolved, AlertFalsePositive:
		return true
	}
	return false
}

// Valid reports whether s is one of the four defined severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Valid reports whether s is a defined log source.
func (s LogSource) Valid() bool {
	switch s {
	case SourceSSH, SourceWeb, SourceAuth, SourceSystem:
		return true
	}
	return false
}

// Valid reports whether s is a defined log status.
func (s LogStatus) Valid() bool {
	return s == StatusNormal || s == StatusSuspicious
}

// User is an authenticated dashboard identity. It is issued by login and
// immutable afterwards; logout destroys it.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// LogEntry is a single ingested security event.
type LogEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Source     LogSource `json:"source"`
	IPAddress  string    `json:"ipAddress"`
	EventType  string    `json:"eventType"`
	Status     LogStatus `json:"status"`
	IsReviewed bool      `json:"isReviewed"`
	Raw        string    `json:"raw,omitempty"`
}

// LogUpdate is the whitelist of LogEntry fields an analyst may change.
// A nil IsReviewed leaves the flag untouched.
type LogUpdate struct {
	IsReviewed *bool `json:"isReviewed,omitempty"`
}

// AlertUpdate is the whitelist of SecurityAlert fields an analyst may
// change: the triage status, nothing else.
type AlertUpdate struct {
	Status AlertStatus `json:"status"`
}

// SecurityAlert is a detection produced by a rule or entered manually.
// Every field except Status is immutable after creation.
type SecurityAlert struct {
	ID            string      `json:"id"`
	Reason        string      `json:"reason"`
	Timestamp     time.Time   `json:"timestamp"`
	IPAddress     string      `json:"ipAddress"`
	Severity      Severity    `json:"severity"`
	RiskScore     int         `json:"riskScore"`
	RuleTriggered string      `json:"ruleTriggered"`
	RawLog        string      `json:"rawLog"`
	Status        AlertStatus `json:"status"`
}

// AlertDraft carries the caller-supplied fields for a new alert. Omitted
// fields are filled with defaults by NewAlertFromDraft.
type AlertDraft struct {
	Reason        string   `json:"reason,omitempty"`
	IPAddress     string   `json:"ipAddress,omitempty"`
	Severity      Severity `json:"severity,omitempty"`
	RiskScore     *int     `json:"riskScore,omitempty"`
	RuleTriggered string   `json:"ruleTriggered,omitempty"`
	RawLog        string   `json:"rawLog,omitempty"`
}

// NewAlertFromDraft materialises d into a SecurityAlert with the stated
// creation defaults: severity Medium, risk score 50, rule "MANUAL_ENTRY",
// status Open. Both data sources use this so a created alert is observably
// identical regardless of which path served it.
func NewAlertFromDraft(id string, now time.Time, d AlertDraft) SecurityAlert {
	a := SecurityAlert{
		ID:            id,
		Reason:        d.Reason,
		Timestamp:     now,
		IPAddress:     d.IPAddress,
		Severity:      d.Severity,
		RiskScore:     50,
		RuleTriggered: d.RuleTriggered,
		RawLog:        d.RawLog,
		Status:        AlertOpen,
	}
	if a.Reason == "" {
		a.Reason = "Unspecified threat"
	}
	if a.IPAddress == "" {
		a.IPAddress = "0.0.0.0"
	}
	if a.Severity == "" {
		a.Severity = SeverityMedium
	}
	if d.RiskScore != nil {
		a.RiskScore = *d.RiskScore
	}
	if a.RuleTriggered == "" {
		a.RuleTriggered = "MANUAL_ENTRY"
	}
	return a
}

// TrendPoint is one bucket of the 24-hour event-volume series.
type TrendPoint struct {
	Time  string `json:"time"`
	Count int    `json:"count"`
}

// SecurityStats is a derived aggregate over the current log collection.
// It is recomputed on every fetch and never stored.
type SecurityStats struct {
	TotalLogs        int          `json:"totalLogs"`
	SuspiciousEvents int          `json:"suspiciousEvents"`
	FailedLogins     int          `json:"failedLogins"`
	UniqueIPs        int          `json:"uniqueIps"`
	TrendData        []TrendPoint `json:"trendData"`
}

// LogPage is the paginated result shape for log queries. Total is the
// post-filter, pre-pagination match count.
type LogPage struct {
	Data       []LogEntry `json:"data"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// HealthStatus is the remote service's health-check response.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
