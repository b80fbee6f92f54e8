// Package lookahead provides demand-driven peek-ahead over a token source.
package lookahead

import (
	"github.com/hrygo/gotadate/plugin/gotadate/token"
)

// Source yields tokens one at a time; nil marks the end of input.
type Source interface {
	Next() (*token.Token, error)
}

// Table buffers tokens pulled from a Source so callers can inspect upcoming
// tokens without consuming them. It only reads as far as the highest index
// requested and is not safe for concurrent use.
type Table struct {
	source Source
	queue  []*token.Token
	done   bool
}

// NewTable creates a lookahead table owning source.
func NewTable(source Source) *Table {
	return &Table{source: source}
}

// Peek returns the token i positions ahead (0-based) without consuming it,
// or nil when the stream ends before that index.
func (t *Table) Peek(i int) (*token.Token, error) {
	if i < 0 {
		return nil, nil
	}
	if err := t.fill(i + 1); err != nil {
		return nil, err
	}
	if i >= len(t.queue) {
		return nil, nil
	}
	return t.queue[i], nil
}

// Pop consumes and returns the next token, or nil at end of input.
func (t *Table) Pop() (*token.Token, error) {
	if err := t.fill(1); err != nil {
		return nil, err
	}
	if len(t.queue) == 0 {
		return nil, nil
	}
	tok := t.queue[0]
	t.queue[0] = nil
	t.queue = t.queue[1:]
	return tok, nil
}

// Buffered returns the number of tokens read but not yet popped.
func (t *Table) Buffered() int {
	return len(t.queue)
}

// fill pulls from the source until size tokens are queued or the source ends.
// Once the source has reported the end it is never polled again.
func (t *Table) fill(size int) error {
	for !t.done && len(t.queue) < size {
		tok, err := t.source.Next()
		if err != nil {
			return err
		}
		if tok == nil {
			t.done = true
			return nil
		}
		t.queue = append(t.queue, tok)
	}
	return nil
}
