package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/gotadate/internal/observability"
	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/plugin/gotadate"
	ratelimit "github.com/hrygo/gotadate/server/middleware"
	"github.com/hrygo/gotadate/server/stats"
	"github.com/hrygo/gotadate/store"
)

// SourceAPI labels extractions made through the HTTP API.
const SourceAPI = "api"

type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Extractor gotadate.Extractor
	Metrics   *observability.Metrics
	// Stats is optional; without it /system/stats answers 404.
	Stats *stats.Collector

	// batchSemaphore limits concurrent scans of a single batch request
	batchSemaphore *semaphore.Weighted
	rateLimiter    *ratelimit.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, extractor gotadate.Extractor, metrics *observability.Metrics) *APIV1Service {
	batchLimit := profile.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 1
	}
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		Extractor:      extractor,
		Metrics:        metrics,
		batchSemaphore: semaphore.NewWeighted(int64(batchLimit)),
		rateLimiter:    ratelimit.NewRateLimiter(profile.RateLimit, profile.RateBurst),
	}
}

// Register mounts the v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	corsHandler := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	})
	group := echoServer.Group("/api/v1", corsHandler, s.rateLimiter.Middleware())

	group.POST("/extract", s.Extract)
	group.POST("/extract/batch", s.ExtractBatch)
	group.GET("/extractions", s.ListExtractions)
	group.GET("/extractions/:uid", s.GetExtraction)
	group.DELETE("/extractions/:uid", s.DeleteExtraction)
	group.GET("/system/metrics/overview", s.GetMetricsOverview)
	group.GET("/system/stats", s.GetStorageStats)
}
