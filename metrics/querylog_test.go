package metrics

import (
	"fmt"
	"testing"
)

func TestQueryLogRingOverwrite(t *testing.T) {
	l := NewQueryLog(3)
	for i := 0; i < 5; i++ {
		l.Add(QueryRecord{RequestID: fmt.Sprintf("r%d", i), LatencyMs: int64(i), Success: true})
	}

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("retained = %d, want 3", len(snap))
	}
	// oldest first: r2, r3, r4
	for i, want := range []string{"r2", "r3", "r4"} {
		if snap[i].RequestID != want {
			t.Errorf("snap[%d] = %s, want %s", i, snap[i].RequestID, want)
		}
	}

	s := l.Stats()
	if s.Total != 5 {
		t.Errorf("total = %d", s.Total)
	}
	if s.SuccessRate != 1.0 {
		t.Errorf("success rate = %v", s.SuccessRate)
	}
	if s.AvgLatencyMs != 3 { // (2+3+4)/3
		t.Errorf("avg latency = %v", s.AvgLatencyMs)
	}
}

func TestQueryLogReset(t *testing.T) {
	l := NewQueryLog(2)
	l.Add(QueryRecord{RequestID: "a", Success: false})
	l.Reset()

	if got := len(l.Snapshot()); got != 0 {
		t.Errorf("snapshot after reset = %d records", got)
	}
	if s := l.Stats(); s.Total != 0 || s.Retained != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}
