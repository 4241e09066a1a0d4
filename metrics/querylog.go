package metrics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
)

// QueryRecord captures one answered request for the in-process query log.
type QueryRecord struct {
	RequestID   string    `json:"request_id"`
	Question    string    `json:"question"`
	Intents     []string  `json:"intents,omitempty"`
	DocsUsed    int       `json:"docs_used"`
	Mode        string    `json:"mode,omitempty"` // SINGLE_INTENT | MULTI_INTENT
	RCA         bool      `json:"rca,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
	Success     bool      `json:"success"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Log writes the record as JSON to the process log.
func (r *QueryRecord) Log() {
	if data, err := json.Marshal(r); err == nil {
		logger.Infof("[QUERY_METRICS] %s", string(data))
	}
}

// QueryLog is a fixed-capacity ring buffer of recent query records. When
// full, the oldest record is overwritten; memory use is bounded by
// construction, not by periodic pruning.
type QueryLog struct {
	mu      sync.Mutex
	records []QueryRecord
	next    int
	size    int
	total   uint64
	success uint64
}

// NewQueryLog creates a ring buffer with the given capacity (default 1000).
func NewQueryLog(capacity int) *QueryLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &QueryLog{records: make([]QueryRecord, capacity)}
}

// Add appends a record, overwriting the oldest when full.
func (l *QueryLog) Add(rec QueryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[l.next] = rec
	l.next = (l.next + 1) % len(l.records)
	if l.size < len(l.records) {
		l.size++
	}
	l.total++
	if rec.Success {
		l.success++
	}
}

// Reset clears the buffer and counters.
func (l *QueryLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next, l.size, l.total, l.success = 0, 0, 0, 0
}

// Snapshot returns the retained records, oldest first.
func (l *QueryLog) Snapshot() []QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]QueryRecord, 0, l.size)
	start := l.next - l.size
	if start < 0 {
		start += len(l.records)
	}
	for i := 0; i < l.size; i++ {
		out = append(out, l.records[(start+i)%len(l.records)])
	}
	return out
}

// Stats summarizes the lifetime counters and retained latencies.
type Stats struct {
	Total        uint64  `json:"total"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	Retained     int     `json:"retained"`
}

// Stats computes summary statistics over the retained window.
func (l *QueryLog) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Stats{Total: l.total, Retained: l.size}
	if l.total > 0 {
		s.SuccessRate = float64(l.success) / float64(l.total)
	}
	if l.size > 0 {
		var sum int64
		start := l.next - l.size
		if start < 0 {
			start += len(l.records)
		}
		for i := 0; i < l.size; i++ {
			sum += l.records[(start+i)%len(l.records)].LatencyMs
		}
		s.AvgLatencyMs = float64(sum) / float64(l.size)
	}
	return s
}
