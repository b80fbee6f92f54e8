// Package stats provides periodic statistics over persisted extraction runs.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/gotadate/store"
)

// Stats represents statistics over stored extractions.
type Stats struct {
	TotalExtractions     int64            `json:"total_extractions"`
	ExtractionsLastWeek  int64            `json:"extractions_last_week"`
	ExtractionsLastMonth int64            `json:"extractions_last_month"`
	TotalTimestamps      int64            `json:"total_timestamps"`
	EmptyExtractions     int64            `json:"empty_extractions"` // runs that found nothing
	BySource             map[string]int64 `json:"by_source"`

	// Activity stats
	ActiveDays       int64     `json:"active_days"` // Days with runs in the last 30 days
	LastActivityTime time.Time `json:"last_activity_time"`

	LastUpdated time.Time `json:"last_updated"`
}

// Collector collects and manages extraction statistics.
type Collector struct {
	store    *store.Store
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	stats    *Stats
	stopOnce sync.Once
	tickStop chan struct{}
}

// NewCollector creates a new statistics collector. A non-positive interval
// defaults to one hour.
func NewCollector(st *store.Store, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Collector{
		store:    st,
		interval: interval,
		now:      time.Now,
		stats: &Stats{
			BySource: map[string]int64{},
		},
		tickStop: make(chan struct{}),
	}
}

// Start runs an initial collection and then refreshes in the background
// until ctx is done or Stop is called.
func (c *Collector) Start(ctx context.Context) {
	c.collect(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-ctx.Done():
				return
			case <-c.tickStop:
				return
			}
		}
	}()
}

// Stop stops the statistics collector. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.tickStop) })
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *c.stats
	cp.BySource = make(map[string]int64, len(c.stats.BySource))
	for k, v := range c.stats.BySource {
		cp.BySource[k] = v
	}
	return &cp
}

// collect gathers current statistics from the store.
func (c *Collector) collect(ctx context.Context) {
	list, err := c.store.ListExtractions(ctx, &store.FindExtraction{})
	if err != nil {
		slog.Warn("failed to collect extraction stats", slog.String("error", err.Error()))
		return
	}

	now := c.now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	next := &Stats{
		TotalExtractions: int64(len(list)),
		BySource:         map[string]int64{},
		LastUpdated:      now,
	}
	activeDays := make(map[string]bool)
	for _, e := range list {
		created := time.Unix(e.CreatedTs, 0)
		if !created.Before(weekAgo) {
			next.ExtractionsLastWeek++
		}
		if !created.Before(monthAgo) {
			next.ExtractionsLastMonth++
			activeDays[created.Format("2006-01-02")] = true
		}
		if created.After(next.LastActivityTime) {
			next.LastActivityTime = created
		}
		next.TotalTimestamps += int64(len(e.Timestamps))
		if len(e.Timestamps) == 0 {
			next.EmptyExtractions++
		}
		next.BySource[e.Source]++
	}
	next.ActiveDays = int64(len(activeDays))

	c.mu.Lock()
	c.stats = next
	c.mu.Unlock()
}

// GetSummary returns a human-readable summary.
func (s *Stats) GetSummary() string {
	sources := make([]string, 0, len(s.BySource))
	for name, n := range s.BySource {
		sources = append(sources, fmt.Sprintf("%s=%d", name, n))
	}
	sort.Strings(sources)

	return fmt.Sprintf(
		`Extraction statistics (updated %s)

Runs
  Total: %d
  Last week: %d
  Last month: %d
  Without results: %d
  By source: %s

Timestamps found: %d

Activity
  Active days (30d): %d
  Last run: %s`,
		s.LastUpdated.Format("2006-01-02 15:04"),
		s.TotalExtractions,
		s.ExtractionsLastWeek,
		s.ExtractionsLastMonth,
		s.EmptyExtractions,
		strings.Join(sources, ", "),
		s.TotalTimestamps,
		s.ActiveDays,
		formatLastActivity(s.LastActivityTime, s.LastUpdated),
	)
}

func formatLastActivity(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	duration := now.Sub(t)
	if duration < time.Hour {
		return "just now"
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("2006-01-02")
}
