package observability

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects extraction counters per caller surface.
type Metrics struct {
	mu sync.Mutex

	scanTotal   atomic.Int64
	scanFailed  atomic.Int64
	timestamps  atomic.Int64
	cacheHits   atomic.Int64
	perSource   map[string]*SourceMetrics
	durations   []time.Duration
	maxDuration int
}

// SourceMetrics holds counters for a single surface.
type SourceMetrics struct {
	scanCount     atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a collector keeping the last maxDurations samples.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		perSource:   make(map[string]*SourceMetrics),
		durations:   make([]time.Duration, 0, maxDurations),
		maxDuration: maxDurations,
	}
}

// RecordScan records a scan.
func (m *Metrics) RecordScan(source string) {
	m.scanTotal.Add(1)
	m.source(source).scanCount.Add(1)
}

// RecordFailure records a failed scan.
func (m *Metrics) RecordFailure(source string) {
	m.scanFailed.Add(1)
	m.source(source).errorCount.Add(1)
}

// RecordTimestamps records how many timestamps a scan produced.
func (m *Metrics) RecordTimestamps(n int) {
	m.timestamps.Add(int64(n))
}

// RecordCacheHit records a scan served from cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordDuration records a scan duration.
func (m *Metrics) RecordDuration(source string, d time.Duration) {
	sm := m.source(source)
	sm.totalDuration.Add(d.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDuration {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, d)
}

func (m *Metrics) source(name string) *SourceMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	sm, ok := m.perSource[name]
	if !ok {
		sm = &SourceMetrics{}
		m.perSource[name] = sm
	}
	return sm
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.scanTotal.Store(0)
	m.scanFailed.Store(0)
	m.timestamps.Store(0)
	m.cacheHits.Store(0)

	m.mu.Lock()
	m.perSource = make(map[string]*SourceMetrics)
	m.durations = make([]time.Duration, 0, m.maxDuration)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := make(map[string]*SourceSnapshot, len(m.perSource))
	for name, sm := range m.perSource {
		count := sm.scanCount.Load()
		total := sm.totalDuration.Load()
		var avg int64
		if count > 0 {
			avg = total / count
		}
		sources[name] = &SourceSnapshot{
			ScanCount:       count,
			ErrorCount:      sm.errorCount.Load(),
			TotalDurationMs: total,
			AvgDurationMs:   avg,
		}
	}

	return &MetricsSnapshot{
		ScanTotal:  m.scanTotal.Load(),
		ScanFailed: m.scanFailed.Load(),
		Timestamps: m.timestamps.Load(),
		CacheHits:  m.cacheHits.Load(),
		Sources:    sources,
		durations:  slices.Clone(m.durations),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	ScanTotal  int64
	ScanFailed int64
	Timestamps int64
	CacheHits  int64
	Sources    map[string]*SourceSnapshot

	durations []time.Duration
}

// SourceSnapshot represents metrics for a single surface.
type SourceSnapshot struct {
	ScanCount       int64
	ErrorCount      int64
	TotalDurationMs int64
	AvgDurationMs   int64
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.ScanTotal == 0 {
		return 100.0
	}
	return float64(s.ScanTotal-s.ScanFailed) / float64(s.ScanTotal) * 100.0
}

// Percentile returns the p-th percentile (0-100) of recorded durations.
func (s *MetricsSnapshot) Percentile(p float64) time.Duration {
	if len(s.durations) == 0 {
		return 0
	}
	sorted := slices.Clone(s.durations)
	slices.Sort(sorted)
	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
