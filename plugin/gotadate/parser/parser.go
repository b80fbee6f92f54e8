// Package parser recognizes dates and times embedded in free-form English
// text and resolves them to absolute timestamps.
//
// Supported fragments:
//   - numeric dates: "23/10/1988", "10/23/1988", "23rd October 1988", "23 Oct"
//   - month-first dates: "October 23, 1988", "Oct 23rd"
//   - relative dates: "yesterday", "tomorrow"
//   - times: "23:10:55", "11 PM", "at 6", "at 8:30 am"
//
// A date and a time that follow each other, in either order, are merged into
// a single timestamp. Text that matches none of these is skipped.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gotadate/plugin/gotadate/lookahead"
	"github.com/hrygo/gotadate/plugin/gotadate/token"
)

// ErrSourceRead is returned by Parse when the character source fails.
var ErrSourceRead = errors.New("unable to read from source")

// DateParser scans a token stream for date and time fragments.
// A DateParser owns its tokenizer and is not safe for concurrent use.
type DateParser struct {
	next   *lookahead.Table
	token  *token.Token
	err    error
	loc    *time.Location
	now    time.Time
	logger *slog.Logger
	parsed []time.Time
}

// Option configures a DateParser.
type Option func(*DateParser)

// WithReference sets the instant used for relative dates and missing years.
func WithReference(now time.Time) Option {
	return func(p *DateParser) {
		p.now = now
	}
}

// WithLocation sets the timezone results are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(p *DateParser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *DateParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a parser reading from src and primes the first token.
func New(src io.RuneReader, opts ...Option) (*DateParser, error) {
	p := &DateParser{
		next:   lookahead.NewTable(token.NewTokenizer(src)),
		loc:    time.Local,
		now:    time.Now(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.advance()
	if p.err != nil {
		return nil, p.err
	}
	return p, nil
}

// Parse is a convenience wrapper that scans s and returns every timestamp found.
func Parse(s string, opts ...Option) ([]time.Time, error) {
	p, err := New(strings.NewReader(s), opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(); err != nil {
		return p.Results(), err
	}
	return p.Results(), nil
}

// SetReference overrides the reference instant ("now").
func (p *DateParser) SetReference(now time.Time) {
	p.now = now
}

// Reference returns the reference instant.
func (p *DateParser) Reference() time.Time {
	return p.now
}

// Location returns the timezone results are expressed in.
func (p *DateParser) Location() *time.Location {
	return p.loc
}

// Results returns the timestamps recognized so far, in text order.
func (p *DateParser) Results() []time.Time {
	return slices.Clone(p.parsed)
}

// Parse scans the remaining input to completion. Unrecognized text is skipped;
// the only error reported is a failure of the character source.
func (p *DateParser) Parse() error {
	for p.token != nil && p.err == nil {
		p.step()
		p.advance()
	}
	return p.err
}

// step recognizes at most one date and one time starting at the current token
// and records the merged result.
func (p *DateParser) step() {
	start := p.token

	date, hasDate, ok := p.tryDate()
	var tod timeOfDay
	hasTime := false
	if ok && p.isTime() {
		tod, hasTime = p.parseTime()
		ok = hasTime
	}
	if ok && !hasDate {
		date, hasDate, ok = p.tryDate()
	}
	if !ok {
		p.logger.Debug("skipped unrecognized fragment",
			slog.Int("line", start.Line()),
			slog.Int("column", start.Column()),
			slog.String("at", p.token.String()),
		)
	}

	switch {
	case hasTime:
		basis := date
		if !hasDate {
			basis = dateOf(p.reference())
		}
		p.parsed = append(p.parsed, combine(basis, tod, p.loc))
	case hasDate:
		p.parsed = append(p.parsed, midnight(date, p.loc))
	}
}

func (p *DateParser) reference() time.Time {
	return p.now.In(p.loc)
}

// advance moves to the next token. A source failure ends the scan.
func (p *DateParser) advance() {
	if p.err != nil {
		p.token = nil
		return
	}
	tok, err := p.next.Pop()
	if err != nil {
		p.fail(err)
		return
	}
	p.token = tok
}

// peek returns the token i positions after the current one.
func (p *DateParser) peek(i int) *token.Token {
	if p.err != nil {
		return nil
	}
	tok, err := p.next.Peek(i)
	if err != nil {
		p.fail(err)
		return nil
	}
	return tok
}

func (p *DateParser) fail(err error) {
	p.err = fmt.Errorf("%w: %w", ErrSourceRead, err)
	p.token = nil
}

// getInt consumes the current token if it is a number.
func (p *DateParser) getInt() (int64, bool) {
	if !p.token.IsNumber() {
		return 0, false
	}
	v := p.token.Int()
	p.advance()
	return v, true
}

// check consumes the current token if it is the separator ch.
func (p *DateParser) check(ch rune) bool {
	if !p.token.Is(ch) {
		return false
	}
	p.advance()
	return true
}

// getMonth consumes the current token if it is a month name.
func (p *DateParser) getMonth() (time.Month, bool) {
	m, ok := monthOf(p.token)
	if !ok {
		return 0, false
	}
	p.advance()
	return m, true
}
