package query

import (
	"testing"
	"time"

	"github.com/sentinellite/sentinel/internal/model"
)

// testLogs builds a small collection with known field values.
func testLogs() []model.LogEntry {
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return []model.LogEntry{
		{ID: "log-0", Timestamp: base, Source: model.SourceSSH, IPAddress: "10.0.0.1", EventType: "Failed Login Attempt", Status: model.StatusSuspicious, Raw: "sshd: Failed password for admin"},
		{ID: "log-1", Timestamp: base.Add(-time.Hour), Source: model.SourceWeb, IPAddress: "10.0.0.2", EventType: "Standard Web Request", Status: model.StatusNormal, Raw: "GET /index.html 200"},
		{ID: "log-2", Timestamp: base.Add(-2 * time.Hour), Source: model.SourceSSH, IPAddress: "192.168.1.50", EventType: "Standard Web Request", Status: model.StatusNormal, Raw: "GET /ADMIN/login 404"},
		{ID: "log-3", Timestamp: base.Add(-3 * time.Hour), Source: model.SourceAuth, IPAddress: "10.0.0.3", EventType: "User Privilege Escalation", Status: model.StatusSuspicious, Raw: "sudo: root session opened"},
	}
}

func TestFilterLogs_SourceExactMatch(t *testing.T) {
	got := FilterLogs(testLogs(), LogFilter{Source: model.SourceSSH})
	if len(got) != 2 {
		t.Fatalf("expected 2 SSH entries, got %d", len(got))
	}
	for _, l := range got {
		if l.Source != model.SourceSSH {
			t.Errorf("entry %s has source %s", l.ID, l.Source)
		}
	}
}

func TestFilterLogs_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	// "admin" appears in log-0's raw text and (as "ADMIN") in log-2's.
	got := FilterLogs(testLogs(), LogFilter{Search: "AdMiN"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "log-0" || got[1].ID != "log-2" {
		t.Errorf("expected [log-0 log-2] in input order, got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestFilterLogs_CombinedPredicates(t *testing.T) {
	got := FilterLogs(testLogs(), LogFilter{Source: model.SourceSSH, Search: "admin"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	got = FilterLogs(testLogs(), LogFilter{Source: model.SourceSSH, Status: model.StatusSuspicious})
	if len(got) != 1 || got[0].ID != "log-0" {
		t.Fatalf("expected only log-0, got %v", got)
	}
}

func TestFilterLogs_PreservesInputOrder(t *testing.T) {
	got := FilterLogs(testLogs(), LogFilter{})
	for i, l := range got {
		if want := testLogs()[i].ID; l.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, l.ID)
		}
	}
}

func TestFilterAlerts_CaseInsensitiveEnums(t *testing.T) {
	alerts := []model.SecurityAlert{
		{ID: "alt-1", Severity: model.SeverityCritical, Status: model.AlertOpen},
		{ID: "alt-2", Severity: model.SeverityLow, Status: model.AlertResolved},
	}
	got := FilterAlerts(alerts, AlertFilter{Severity: "critical"})
	if len(got) != 1 || got[0].ID != "alt-1" {
		t.Fatalf("expected alt-1 only, got %v", got)
	}
	got = FilterAlerts(alerts, AlertFilter{Status: "RESOLVED"})
	if len(got) != 1 || got[0].ID != "alt-2" {
		t.Fatalf("expected alt-2 only, got %v", got)
	}
}

func TestPaginate_PartitionsWithoutGapsOrOverlaps(t *testing.T) {
	items := make([]int, 47)
	for i := range items {
		items[i] = i
	}

	for _, limit := range []int{1, 5, 10, 47, 50} {
		seen := make(map[int]bool)
		for page := 1; ; page++ {
			slice, total := Paginate(items, page, limit)
			if total != len(items) {
				t.Fatalf("limit %d page %d: total = %d, want %d", limit, page, total, len(items))
			}
			if len(slice) > limit {
				t.Fatalf("limit %d page %d: slice has %d items", limit, page, len(slice))
			}
			if len(slice) == 0 {
				break
			}
			for _, v := range slice {
				if seen[v] {
					t.Fatalf("limit %d: item %d appeared twice", limit, v)
				}
				seen[v] = true
			}
		}
		if len(seen) != len(items) {
			t.Errorf("limit %d: saw %d of %d items", limit, len(seen), len(items))
		}
	}
}

func TestPaginate_PageBeyondEndYieldsEmptySlice(t *testing.T) {
	items := []int{1, 2, 3}
	slice, total := Paginate(items, 99, 10)
	if len(slice) != 0 {
		t.Errorf("expected empty slice, got %v", slice)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestPaginate_DegenerateInputs(t *testing.T) {
	items := []int{1, 2, 3}

	// page < 1 is treated as page 1.
	slice, _ := Paginate(items, 0, 2)
	if len(slice) != 2 || slice[0] != 1 {
		t.Errorf("page 0: expected first page, got %v", slice)
	}

	// limit < 1 yields no items but the correct total.
	slice, total := Paginate(items, 1, 0)
	if len(slice) != 0 || total != 3 {
		t.Errorf("limit 0: got slice %v total %d", slice, total)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{500, 20, 25},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.limit); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestTrendSeries_LabelsAndBucketCounts(t *testing.T) {
	var hours [24]int
	hours[0] = 3   // 00:00 bucket
	hours[13] = 7  // 12:00 bucket
	hours[23] = 2  // 20:00 bucket and the closing 23:59 point

	points := TrendSeries(hours)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}

	want := map[string]int{
		"00:00": 3, "04:00": 0, "08:00": 0, "12:00": 7,
		"16:00": 0, "20:00": 2, "23:59": 2,
	}
	for _, p := range points {
		if p.Count != want[p.Time] {
			t.Errorf("bucket %s: count = %d, want %d", p.Time, p.Count, want[p.Time])
		}
	}
}

func TestHourHistogram_UsesUTCHour(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	logs := []model.LogEntry{
		// 19:00 EST is 00:00 UTC.
		{Timestamp: time.Date(2026, 3, 14, 19, 30, 0, 0, est)},
	}
	hours := HourHistogram(logs)
	if hours[0] != 1 {
		t.Errorf("expected entry counted in UTC hour 0, histogram: %v", hours)
	}
}
