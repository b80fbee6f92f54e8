package v1

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/gotadate/internal/errors"
)

// MetricsOverviewResponse represents the overview response of extraction metrics
type MetricsOverviewResponse struct {
	TotalScans   int64                   `json:"total_scans"`
	FailedScans  int64                   `json:"failed_scans"`
	SuccessRate  float64                 `json:"success_rate"`
	Timestamps   int64                   `json:"timestamps"`
	CacheHits    int64                   `json:"cache_hits"`
	P50LatencyMs int64                   `json:"p50_latency_ms"`
	P95LatencyMs int64                   `json:"p95_latency_ms"`
	Sources      []SourceMetricsResponse `json:"sources"`
}

// SourceMetricsResponse holds counters for one caller surface.
type SourceMetricsResponse struct {
	Source       string `json:"source"`
	Scans        int64  `json:"scans"`
	Errors       int64  `json:"errors"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

// GetMetricsOverview returns the extraction metrics collected since start-up
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snap := s.Metrics.Snapshot()

	sources := make([]SourceMetricsResponse, 0, len(snap.Sources))
	for name, sm := range snap.Sources {
		sources = append(sources, SourceMetricsResponse{
			Source:       name,
			Scans:        sm.ScanCount,
			Errors:       sm.ErrorCount,
			AvgLatencyMs: sm.AvgDurationMs,
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Source < sources[j].Source })

	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalScans:   snap.ScanTotal,
		FailedScans:  snap.ScanFailed,
		SuccessRate:  snap.SuccessRate(),
		Timestamps:   snap.Timestamps,
		CacheHits:    snap.CacheHits,
		P50LatencyMs: snap.Percentile(50).Milliseconds(),
		P95LatencyMs: snap.Percentile(95).Milliseconds(),
		Sources:      sources,
	})
}

// GetStorageStats returns statistics over persisted extraction runs.
// GET /api/v1/system/stats?format=json|text
func (s *APIV1Service) GetStorageStats(c echo.Context) error {
	if s.Stats == nil {
		return writeError(c, apperrors.NotFound("statistics are not enabled"))
	}
	stats := s.Stats.GetStats()
	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, stats)
	case "text":
		return c.String(http.StatusOK, stats.GetSummary())
	default:
		return writeError(c, apperrors.InvalidArgument("format must be json or text"))
	}
}
