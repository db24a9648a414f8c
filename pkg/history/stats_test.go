package history

import (
	"testing"
	"time"
)

func TestStatsAdd(t *testing.T) {
	ts := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	stats := NewStats()

	stats.Add(Event{Timestamp: ts.Add(time.Minute), Action: ActionSent, Value: 120})
	stats.Add(Event{Timestamp: ts, Action: ActionStarted})
	stats.Add(Event{Timestamp: ts.Add(2 * time.Minute), Action: ActionSuppressed, Value: 90})
	stats.Add(Event{Timestamp: ts.Add(3 * time.Minute), Action: ActionFailed, Error: "timeout"})

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.ByAction[ActionSent] != 1 || stats.ByAction[ActionFailed] != 1 {
		t.Errorf("ByAction = %v", stats.ByAction)
	}
	if !stats.Start.Equal(ts) {
		t.Errorf("Start = %v, want %v", stats.Start, ts)
	}
	if !stats.End.Equal(ts.Add(3 * time.Minute)) {
		t.Errorf("End = %v", stats.End)
	}
	if stats.Readings != 2 || stats.Min != 90 || stats.Max != 120 {
		t.Errorf("readings=%d min=%d max=%d", stats.Readings, stats.Min, stats.Max)
	}
	if stats.Mean() != 105 {
		t.Errorf("Mean = %v, want 105", stats.Mean())
	}
	if stats.LastError != "timeout" {
		t.Errorf("LastError = %q", stats.LastError)
	}
}

func TestStatsMeanEmpty(t *testing.T) {
	if got := NewStats().Mean(); got != 0 {
		t.Errorf("Mean = %v, want 0", got)
	}
}

func TestCollect(t *testing.T) {
	ts := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	path := writeEvents(t, []Event{
		{Timestamp: ts, Action: ActionSent, Value: 100},
		{Timestamp: ts.Add(30 * time.Second), Action: ActionSent, Value: 110},
	})

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	stats, err := Collect(r)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if stats.Total != 2 || stats.Sum != 210 {
		t.Errorf("Total=%d Sum=%d", stats.Total, stats.Sum)
	}
}
