package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanContext_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sc := NewScanContextWithID(logger, "scan-1", "cli")
	sc.Info("scan completed", slog.Int(LogFieldResults, 2))
	sc.Error("scan failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "scan_id=scan-1")
	assert.Contains(t, out, "source=cli")
	assert.Contains(t, out, "results=2")
	assert.Contains(t, out, "error=boom")
}

func TestScanContext_GeneratesID(t *testing.T) {
	a := NewScanContext(nil, "api")
	b := NewScanContext(nil, "api")
	assert.NotEmpty(t, a.ScanID)
	assert.NotEqual(t, a.ScanID, b.ScanID)
}

func TestScanContext_Context(t *testing.T) {
	sc := NewScanContext(nil, "api")
	ctx := WithScanContext(context.Background(), sc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, sc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics(3)
	m.RecordScan("cli")
	m.RecordScan("api")
	m.RecordScan("api")
	m.RecordFailure("api")
	m.RecordTimestamps(5)
	m.RecordCacheHit()
	for _, d := range []time.Duration{10, 20, 30, 40} {
		m.RecordDuration("api", d*time.Millisecond)
	}

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.ScanTotal)
	assert.Equal(t, int64(1), s.ScanFailed)
	assert.Equal(t, int64(5), s.Timestamps)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(2), s.Sources["api"].ScanCount)
	assert.Equal(t, int64(1), s.Sources["api"].ErrorCount)
	assert.Equal(t, int64(50), s.Sources["api"].AvgDurationMs)
	assert.InDelta(t, 66.67, s.SuccessRate(), 0.01)

	// Only the last three samples are kept.
	assert.Equal(t, 20*time.Millisecond, s.Percentile(0))
	assert.Equal(t, 40*time.Millisecond, s.Percentile(100))
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics(0)
	m.RecordScan("cli")
	m.Reset()

	s := m.Snapshot()
	assert.Zero(t, s.ScanTotal)
	assert.Empty(t, s.Sources)
	assert.Equal(t, 100.0, s.SuccessRate())
	assert.Zero(t, s.Percentile(50))
}
