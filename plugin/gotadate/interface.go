// Package gotadate provides the extraction service that turns free-form
// English text into absolute timestamps.
package gotadate

import (
	"context"
	"io"
	"time"
)

// Extractor defines the date extraction service interface.
// Consumers: the CLI and the HTTP API.
type Extractor interface {
	// Extract scans input and returns every date/time fragment it recognizes.
	Extract(ctx context.Context, input string, opts Options) (*Result, error)

	// ExtractReader scans r to EOF. Results are never cached.
	ExtractReader(ctx context.Context, r io.Reader, opts Options) (*Result, error)
}

// Options controls a single extraction.
type Options struct {
	// Reference is the instant relative dates and missing fields resolve
	// against. Zero means now.
	Reference time.Time
	// Timezone is an IANA name. Empty uses the service default.
	Timezone string
	// Source labels the caller surface (cli, api) in logs and metrics.
	Source string
}

// Result holds the timestamps found in text order.
type Result struct {
	Timestamps []time.Time `json:"timestamps"`
	Reference  time.Time   `json:"reference"`
	Timezone   string      `json:"timezone"`
}
