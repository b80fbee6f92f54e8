// Package observability provides structured scan logging and in-process
// extraction metrics.
package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldScanID is the field name for scan ID.
	LogFieldScanID = "scan_id"
	// LogFieldSource is the field name for the caller surface (cli, api).
	LogFieldSource = "source"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldInputLen is the field name for input length in bytes.
	LogFieldInputLen = "input_length"
	// LogFieldResults is the field name for the number of timestamps found.
	LogFieldResults = "results"
	// LogFieldTimezone is the field name for the resolved timezone.
	LogFieldTimezone = "timezone"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
)

// ScanContext carries the identity and logger of a single extraction.
type ScanContext struct {
	ScanID    string
	Source    string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewScanContext creates a scan context with a generated scan ID.
func NewScanContext(logger *slog.Logger, source string) *ScanContext {
	return NewScanContextWithID(logger, uuid.New().String(), source)
}

// NewScanContextWithID creates a scan context with a specific scan ID.
func NewScanContextWithID(logger *slog.Logger, scanID, source string) *ScanContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanContext{
		ScanID:    scanID,
		Source:    source,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// With returns a logger carrying the scan attributes.
func (s *ScanContext) With() *slog.Logger {
	return s.Logger.With(slog.String(LogFieldScanID, s.ScanID), slog.String(LogFieldSource, s.Source))
}

// Info logs an info message.
func (s *ScanContext) Info(msg string, attrs ...slog.Attr) {
	s.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, s.attrs(attrs...)...)
}

// Debug logs a debug message.
func (s *ScanContext) Debug(msg string, attrs ...slog.Attr) {
	s.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, s.attrs(attrs...)...)
}

// Error logs an error message with the error.
func (s *ScanContext) Error(msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	s.Logger.LogAttrs(context.Background(), slog.LevelError, msg, s.attrs(attrs...)...)
}

// Duration returns the elapsed time since the scan started.
func (s *ScanContext) Duration() time.Duration {
	return time.Since(s.StartTime)
}

func (s *ScanContext) attrs(extra ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldScanID, s.ScanID),
		slog.String(LogFieldSource, s.Source),
		slog.Int64(LogFieldDuration, s.Duration().Milliseconds()),
	}
	return append(base, extra...)
}

type ctxKey struct{}

// WithScanContext adds the scan context to ctx.
func WithScanContext(ctx context.Context, sc *ScanContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext extracts the scan context from ctx.
func FromContext(ctx context.Context) (*ScanContext, bool) {
	sc, ok := ctx.Value(ctxKey{}).(*ScanContext)
	return sc, ok
}
