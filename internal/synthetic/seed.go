// Package synthetic provides the deterministic substitute dataset served
// when the remote SentinelLite service is unreachable, and the seed
// generators the reference backend reuses to bootstrap its own stores.
//
// # Determinism
//
// Every generated value derives from the record index and the seed clock
// passed to the constructor. Two stores built from the same clock are
// identical, which is what makes the fallback dataset testable and keeps
// the dashboard stable across reloads within one session.
//
// # Seeding rules
//
// The 500-entry log sequence is ordered newest-first at 15-minute steps.
// Sources rotate round-robin through SSH, Web, Auth, System. Every 5th
// record is a "Failed Login Attempt" and every 8th (when not a failed
// login) a "User Privilege Escalation"; independently, every 7th record is
// marked Suspicious. The two rules are deliberately uncorrelated — that is
// how the source dataset behaves, and tests are seeded against this
// distribution.
package synthetic

import (
	"fmt"
	"time"

	"github.com/sentinellite/sentinel/internal/model"
)

// SeedLogCount is the size of the generated log collection.
const SeedLogCount = 500

// credential pairs a fallback user with its accepted password.
type credential struct {
	user     model.User
	password string
}

// seedCredentials are the two accounts the fallback path accepts.
var seedCredentials = map[string]credential{
	"admin@sentinel.lite": {
		user: model.User{
			ID:     "u-1",
			Name:   "Jane Doe",
			Email:  "admin@sentinel.lite",
			Role:   model.RoleAdmin,
			Avatar: "JD",
		},
		password: "sentinel2025",
	},
	"analyst@sentinel.lite": {
		user: model.User{
			ID:     "u-2",
			Name:   "John Smith",
			Email:  "analyst@sentinel.lite",
			Role:   model.RoleAnalyst,
			Avatar: "JS",
		},
		password: "analyst2025",
	},
}

// SeedUsers returns the fallback user accounts with their passwords,
// keyed by lowercase email. The reference backend seeds the same accounts.
func SeedUsers() map[string]struct {
	User     model.User
	Password string
} {
	out := make(map[string]struct {
		User     model.User
		Password string
	}, len(seedCredentials))
	for email, c := range seedCredentials {
		out[email] = struct {
			User     model.User
			Password string
		}{User: c.user, Password: c.password}
	}
	return out
}

// GenerateLogs builds n deterministic log entries with timestamps
// descending from now at 15-minute intervals. IDs are zero-padded
// ("log-0000" …) so the sequence is stable and sortable.
func GenerateLogs(n int, now time.Time) []model.LogEntry {
	logs := make([]model.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, model.LogEntry{
			ID:         fmt.Sprintf("log-%04d", i),
			Timestamp:  now.Add(-time.Duration(i) * 15 * time.Minute),
			Source:     model.LogSources[i%4],
			IPAddress:  seedIP(i),
			EventType:  seedEventType(i),
			Status:     seedStatus(i),
			IsReviewed: false,
			Raw:        seedRaw(i),
		})
	}
	return logs
}

// seedEventType assigns event classifications by index. The i%5 rule takes
// precedence over i%8, matching the source dataset.
func seedEventType(i int) string {
	switch {
	case i%5 == 0:
		return "Failed Login Attempt"
	case i%8 == 0:
		return "User Privilege Escalation"
	default:
		return "Standard Web Request"
	}
}

// seedStatus marks every 7th record Suspicious, independent of event type.
func seedStatus(i int) model.LogStatus {
	if i%7 == 0 {
		return model.StatusSuspicious
	}
	return model.StatusNormal
}

// seedIP derives a stable dotted-quad from the index. The first octet
// cycles through 100–149 as in the source dataset; the rest are index
// multiples reduced mod 255 so that no randomness enters the store.
func seedIP(i int) string {
	return fmt.Sprintf("%d.%d.%d.%d", 100+(i%50), (i*37)%255, (i*53)%255, (i*71)%255)
}

// seedRaw supplies evidence text: an sshd auth failure line for failed
// logins, an access-log line for everything else.
func seedRaw(i int) string {
	if i%5 == 0 {
		return fmt.Sprintf("Mar 15 14:32:01 server sshd[123]: Failed password for invalid user admin from 192.168.1.%d port 54321 ssh2", i)
	}
	return fmt.Sprintf(`185.12.3.%d - - [15/Mar/2024:09:12:03 +0000] "GET /api/v1/health HTTP/1.1" 200 512`, i)
}

// SeedAlerts returns the four seed alerts, one per severity level, ordered
// newest-first. All start Open.
func SeedAlerts(now time.Time) []model.SecurityAlert {
	return []model.SecurityAlert{
		{
			ID:            "alt-1",
			Reason:        "Multiple failed SSH login attempts detected",
			Timestamp:     now,
			IPAddress:     "45.122.34.11",
			Severity:      model.SeverityCritical,
			RiskScore:     92,
			RuleTriggered: "AUTH_BRUTE_FORCE",
			RawLog:        "Mar 15 10:22:15 host sshd[1522]: pam_unix(sshd:auth): authentication failure; logname= uid=0 euid=0 tty=ssh ruser= rhost=45.122.34.11",
			Status:        model.AlertOpen,
		},
		{
			ID:            "alt-2",
			Reason:        "Repeated web requests (404 burst) from single IP",
			Timestamp:     now.Add(-1 * time.Hour),
			IPAddress:     "185.12.3.99",
			Severity:      model.SeverityMedium,
			RiskScore:     65,
			RuleTriggered: "WEB_RECONNAISSANCE",
			RawLog:        `185.12.3.99 - - [15/Mar/2024:09:12:03 +0000] "GET /wp-admin/config.php HTTP/1.1" 404 124`,
			Status:        model.AlertOpen,
		},
		{
			ID:            "alt-3",
			Reason:        "Unexpected admin access during off-hours",
			Timestamp:     now.Add(-2 * time.Hour),
			IPAddress:     "10.0.0.5",
			Severity:      model.SeverityLow,
			RiskScore:     35,
			RuleTriggered: "ANOMALY_TIME_ACCESS",
			RawLog:        "Mar 15 03:00:11 srv-01 auth: User root logged in from 10.0.0.5",
			Status:        model.AlertOpen,
		},
		{
			ID:            "alt-4",
			Reason:        "SQL injection attempt detected in web request",
			Timestamp:     now.Add(-3 * time.Hour),
			IPAddress:     "203.45.67.89",
			Severity:      model.SeverityHigh,
			RiskScore:     85,
			RuleTriggered: "WEB_SQL_INJECTION",
			RawLog:        `203.45.67.89 - - [15/Mar/2024:11:45:22 +0000] "GET /search?q=1' OR '1'='1 HTTP/1.1" 403 0`,
			Status:        model.AlertOpen,
		},
	}
}
