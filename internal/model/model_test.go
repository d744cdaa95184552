package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAlertStatusValid(t *testing.T) {
	for _, s := range []AlertStatus{AlertOpen, AlertIsolated, AlertResolved, AlertFalsePositive} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []AlertStatus{"", "open", "Closed", "FALSE POSITIVE"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Severity("critical").Valid() {
		t.Error("enum values are case-sensitive on the wire")
	}
}

func TestLogEnumsValid(t *testing.T) {
	for _, s := range LogSources {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if LogSource("ssh").Valid() || LogSource("Firewall").Valid() {
		t.Error("unexpected source accepted")
	}
	if !StatusNormal.Valid() || !StatusSuspicious.Valid() || LogStatus("Blocked").Valid() {
		t.Error("log status validation mismatch")
	}
}

func TestNewAlertFromDraft_AppliesDefaults(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	a := NewAlertFromDraft("alt-test", now, AlertDraft{})

	if a.ID != "alt-test" || !a.Timestamp.Equal(now) {
		t.Fatalf("identity fields wrong: %+v", a)
	}
	if a.Reason != "Unspecified threat" {
		t.Errorf("reason = %q", a.Reason)
	}
	if a.IPAddress != "0.0.0.0" {
		t.Errorf("ipAddress = %q", a.IPAddress)
	}
	if a.Severity != SeverityMedium {
		t.Errorf("severity = %q", a.Severity)
	}
	if a.RiskScore != 50 {
		t.Errorf("riskScore = %d", a.RiskScore)
	}
	if a.RuleTriggered != "MANUAL_ENTRY" {
		t.Errorf("ruleTriggered = %q", a.RuleTriggered)
	}
	if a.Status != AlertOpen {
		t.Errorf("status = %q", a.Status)
	}
}

func TestNewAlertFromDraft_KeepsProvidedFields(t *testing.T) {
	now := time.Now().UTC()
	risk := 0 // explicit zero must survive, it is not "unset"

	a := NewAlertFromDraft("alt-x", now, AlertDraft{
		Reason:        "Port scan detected",
		IPAddress:     "203.0.113.9",
		Severity:      SeverityCritical,
		RiskScore:     &risk,
		RuleTriggered: "NET_PORT_SCAN",
		RawLog:        "SYN flood from 203.0.113.9",
	})

	if a.Reason != "Port scan detected" || a.IPAddress != "203.0.113.9" {
		t.Errorf("caller fields overwritten: %+v", a)
	}
	if a.Severity != SeverityCritical || a.RuleTriggered != "NET_PORT_SCAN" {
		t.Errorf("caller fields overwritten: %+v", a)
	}
	if a.RiskScore != 0 {
		t.Errorf("explicit riskScore 0 replaced with %d", a.RiskScore)
	}
	if a.Status != AlertOpen {
		t.Errorf("new alerts must open as Open, got %q", a.Status)
	}
}

func TestWireFieldNames(t *testing.T) {
	// The camelCase JSON names are the dashboard contract; a rename here
	// breaks every consumer silently.
	raw, err := json.Marshal(LogEntry{ID: "log-0001"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "timestamp", "source", "ipAddress", "eventType", "status", "isReviewed"} {
		if _, ok := m[key]; !ok {
			t.Errorf("LogEntry is missing wire field %q", key)
		}
	}

	raw, err = json.Marshal(SecurityStats{})
	if err != nil {
		t.Fatal(err)
	}
	m = nil
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"totalLogs", "suspiciousEvents", "failedLogins", "uniqueIps", "trendData"} {
		if _, ok := m[key]; !ok {
			t.Errorf("SecurityStats is missing wire field %q", key)
		}
	}
}
