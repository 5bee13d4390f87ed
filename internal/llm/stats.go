package llm

import (
	"slices"
	"sync"
	"time"
)

// Outcome is how a chat stream ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned" // consumer stopped reading
)

// streamRecord is one finished stream. firstFragment is negative when no
// fragment arrived.
type streamRecord struct {
	at            time.Time
	firstFragment time.Duration
	total         time.Duration
	fragments     int
	outcome       Outcome
}

// Latency summarizes one latency series in milliseconds.
type Latency struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// StatsSnapshot aggregates the streams inside the window. Total covers
// completed streams only; FirstFragment covers every stream that produced
// text.
type StatsSnapshot struct {
	Streams       int     `json:"streams"`
	Completed     int     `json:"completed"`
	Failed        int     `json:"failed"`
	Abandoned     int     `json:"abandoned"`
	Fragments     int     `json:"fragments"`
	FirstFragment Latency `json:"first_fragment"`
	Total         Latency `json:"total"`
}

// Stats keeps one record per chat stream over a rolling window. A nil
// *Stats records nothing.
type Stats struct {
	mu      sync.Mutex
	window  time.Duration
	records []streamRecord
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, records: make([]streamRecord, 0, 256)}
}

func (s *Stats) record(r streamRecord) {
	if s == nil {
		return
	}
	if r.total < 0 {
		r.total = 0
	}
	r.at = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(r.at)
	s.records = append(s.records, r)
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())

	var snap StatsSnapshot
	var first, total []int64
	for _, r := range s.records {
		snap.Streams++
		snap.Fragments += r.fragments
		switch r.outcome {
		case OutcomeCompleted:
			snap.Completed++
			total = append(total, r.total.Milliseconds())
		case OutcomeAbandoned:
			snap.Abandoned++
		default:
			snap.Failed++
		}
		if r.firstFragment >= 0 {
			first = append(first, r.firstFragment.Milliseconds())
		}
	}
	snap.FirstFragment = summarize(first)
	snap.Total = summarize(total)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.records = slices.DeleteFunc(s.records, func(r streamRecord) bool {
		return r.at.Before(cutoff)
	})
}

func summarize(ms []int64) Latency {
	if len(ms) == 0 {
		return Latency{}
	}
	slices.Sort(ms)
	var sum int64
	for _, v := range ms {
		sum += v
	}
	return Latency{
		Count: len(ms),
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: float64(sum) / float64(len(ms)),
		P50Ms: interpolate(ms, 50),
		P95Ms: interpolate(ms, 95),
		P99Ms: interpolate(ms, 99),
	}
}

// interpolate returns the pct-th percentile of sorted values, linearly
// interpolated between the two nearest ranks.
func interpolate(sorted []int64, pct float64) float64 {
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
