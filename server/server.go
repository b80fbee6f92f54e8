// Package server wires the extraction service, the store and the v1 API into
// an Echo HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/gotadate/internal/observability"
	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/plugin/gotadate"
	apiv1 "github.com/hrygo/gotadate/server/router/api/v1"
	"github.com/hrygo/gotadate/server/stats"
	"github.com/hrygo/gotadate/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	metrics    *observability.Metrics
	collector  *stats.Collector
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	if profile == nil || store == nil {
		return nil, errors.New("profile and store are required")
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.JSONSerializer = jsonSerializer{}
	echoServer.Use(middleware.Recover())

	metrics := observability.NewMetrics(0)
	opts := []gotadate.ServiceOption{
		gotadate.WithLogger(slog.Default()),
		gotadate.WithMetrics(metrics),
	}
	if profile.CacheCapacity > 0 {
		opts = append(opts, gotadate.WithCache(profile.CacheCapacity, profile.CacheTTL))
	}
	extractor := gotadate.NewService(profile.Timezone, opts...)

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
		metrics:    metrics,
		collector:  stats.NewCollector(store, time.Hour),
	}

	echoServer.GET("/healthz", s.healthz)
	apiService := apiv1.NewAPIV1Service(profile, store, extractor, metrics)
	apiService.Stats = s.collector
	apiService.Register(echoServer)

	return s, nil
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.GetDriver().GetDB().PingContext(ctx); err != nil {
		slog.Error("health check failed", slog.String("error", err.Error()))
		return c.String(http.StatusServiceUnavailable, "Database unavailable.")
	}
	return c.String(http.StatusOK, "Service ready.")
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously. The statistics collector runs until ctx is done or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener
	s.collector.Start(ctx)

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	slog.Info("server started", slog.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	if s.echoServer.Listener == nil {
		return nil
	}
	return s.echoServer.Listener.Addr()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	s.collector.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("server stopped properly")
}
