package gotadate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	apperrors "github.com/hrygo/gotadate/internal/errors"
	"github.com/hrygo/gotadate/internal/observability"
	"github.com/hrygo/gotadate/plugin/gotadate/cache"
	"github.com/hrygo/gotadate/plugin/gotadate/parser"
	"github.com/hrygo/gotadate/server/timezone"
)

const defaultSource = "lib"

// Service implements Extractor with the rule-based date parser.
type Service struct {
	defaultTimezone *time.Location
	logger          *slog.Logger
	metrics         *observability.Metrics
	cache           *cache.LRU[*Result]
	now             func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithCache enables result caching for string input with an explicit reference.
func WithCache(capacity int, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache.NewLRU[*Result](capacity, ttl)
	}
}

// NewService creates a new extraction service. An invalid default timezone
// falls back to the local zone.
func NewService(defaultTimezone string, opts ...ServiceOption) *Service {
	loc, err := timezone.ParseTimezone(defaultTimezone)
	s := &Service{
		defaultTimezone: loc,
		logger:          slog.Default(),
		metrics:         observability.NewMetrics(0),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err != nil {
		s.logger.Warn("invalid default timezone, using local",
			slog.String(observability.LogFieldTimezone, defaultTimezone),
			slog.String("error", err.Error()))
	}
	return s
}

// Metrics returns the service's metrics collector.
func (s *Service) Metrics() *observability.Metrics {
	return s.metrics
}

// DefaultTimezone returns the zone used when Options.Timezone is empty.
func (s *Service) DefaultTimezone() *time.Location {
	return s.defaultTimezone
}

// Extract scans input and returns the recognized timestamps.
func (s *Service) Extract(ctx context.Context, input string, opts Options) (*Result, error) {
	loc, err := s.location(opts.Timezone)
	if err != nil {
		return nil, err
	}

	key := ""
	if s.cache != nil && !opts.Reference.IsZero() {
		key = cacheKey(input, opts.Reference, loc)
		if res, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheHit()
			return cloneResult(res), nil
		}
	}

	res, err := s.scan(ctx, strings.NewReader(input), len(input), loc, opts)
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.cache.Set(key, cloneResult(res), 0)
	}
	return res, nil
}

// ExtractReader scans r to EOF and returns the recognized timestamps.
func (s *Service) ExtractReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if r == nil {
		return nil, apperrors.InvalidArgument("reader is required")
	}
	loc, err := s.location(opts.Timezone)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, r, -1, loc, opts)
}

func (s *Service) scan(ctx context.Context, r io.Reader, size int, loc *time.Location, opts Options) (*Result, error) {
	source := opts.Source
	if source == "" {
		source = defaultSource
	}
	sc := observability.NewScanContext(s.logger, source)
	s.metrics.RecordScan(source)

	if err := ctx.Err(); err != nil {
		s.metrics.RecordFailure(source)
		return nil, contextError(err)
	}

	ref := opts.Reference
	if ref.IsZero() {
		ref = s.now()
	}
	ref = ref.In(loc)

	timestamps, err := s.run(ctx, r, ref, loc, sc)
	s.metrics.RecordDuration(source, sc.Duration())
	if err != nil {
		s.metrics.RecordFailure(source)
		sc.Error("extraction failed", err,
			slog.String(observability.LogFieldErrorCode, string(apperrors.GetCodeFromError(err, apperrors.ErrCodeInternal))))
		return nil, err
	}
	s.metrics.RecordTimestamps(len(timestamps))

	attrs := []slog.Attr{
		slog.Int(observability.LogFieldResults, len(timestamps)),
		slog.String(observability.LogFieldTimezone, loc.String()),
	}
	if size >= 0 {
		attrs = append(attrs, slog.Int(observability.LogFieldInputLen, size))
	}
	sc.Info("extraction completed", attrs...)

	return &Result{
		Timestamps: timestamps,
		Reference:  ref,
		Timezone:   loc.String(),
	}, nil
}

func (s *Service) run(ctx context.Context, r io.Reader, ref time.Time, loc *time.Location, sc *observability.ScanContext) ([]time.Time, error) {
	src := bufio.NewReader(&contextReader{ctx: ctx, r: r})
	p, err := parser.New(src,
		parser.WithReference(ref),
		parser.WithLocation(loc),
		parser.WithLogger(sc.With()),
	)
	if err == nil {
		err = p.Parse()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr)
		}
		return nil, apperrors.SourceReadFailed(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return p.Results(), nil
}

func (s *Service) location(tz string) (*time.Location, error) {
	if tz == "" {
		return s.defaultTimezone, nil
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, apperrors.InvalidTimezone(tz, err)
	}
	return loc, nil
}

func contextError(err error) error {
	if err == context.DeadlineExceeded {
		return apperrors.Timeout(err)
	}
	return apperrors.ContextCanceled(err)
}

func cacheKey(input string, ref time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s|%d|%s", loc.String(), ref.UnixNano(), input)
}

func cloneResult(r *Result) *Result {
	out := *r
	out.Timestamps = slices.Clone(r.Timestamps)
	return &out
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
