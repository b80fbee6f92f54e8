package token

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ReadError reports a failure of the underlying character source.
type ReadError struct {
	Line   int
	Column int
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read failed at %d:%d: %v", e.Line, e.Column, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Tokenizer converts a rune stream into a lazy sequence of tokens.
// It is single-pass and not safe for concurrent use.
type Tokenizer struct {
	src io.RuneReader

	ch     rune
	line   int
	col    int
	primed bool
	eof    bool
	err    error
}

// NewTokenizer creates a tokenizer reading from src.
func NewTokenizer(src io.RuneReader) *Tokenizer {
	return &Tokenizer{
		src:  src,
		line: 1,
	}
}

// NewStringTokenizer creates a tokenizer over s.
func NewStringTokenizer(s string) *Tokenizer {
	return NewTokenizer(strings.NewReader(s))
}

// Next returns the next token, or nil once the input is exhausted.
// A source failure is sticky: every later call returns the same error.
func (t *Tokenizer) Next() (*Token, error) {
	if !t.primed {
		t.primed = true
		t.advance()
	}

	for !t.eof && unicode.IsSpace(t.ch) {
		t.advance()
	}
	if t.err != nil {
		return nil, t.err
	}
	if t.eof {
		return nil, nil
	}

	line, col := t.line, t.col
	var tok *Token
	switch {
	case isDigit(t.ch):
		tok = NewNumber(t.scanNumber(), line, col)
	case unicode.IsLetter(t.ch):
		tok = NewWord(t.scanWord(), line, col)
	default:
		ch := t.ch
		t.advance()
		tok = NewSeparator(ch, line, col)
	}

	if t.err != nil {
		return nil, t.err
	}
	return tok, nil
}

// scanNumber accumulates a digit run. Values beyond int64 saturate.
func (t *Tokenizer) scanNumber() int64 {
	var v int64
	for !t.eof && isDigit(t.ch) {
		d := int64(t.ch - '0')
		if v > (math.MaxInt64-d)/10 {
			v = math.MaxInt64
		} else {
			v = v*10 + d
		}
		t.advance()
	}
	return v
}

func (t *Tokenizer) scanWord() string {
	var sb strings.Builder
	for !t.eof && unicode.IsLetter(t.ch) {
		sb.WriteRune(t.ch)
		t.advance()
	}
	return sb.String()
}

// advance reads the next rune and tracks its position.
func (t *Tokenizer) advance() {
	r, _, err := t.src.ReadRune()
	if err != nil {
		t.eof = true
		if err != io.EOF {
			t.err = &ReadError{Line: t.line, Column: t.col + 1, Err: errors.Wrap(err, "read rune")}
		}
		return
	}

	if t.ch == '\n' && t.col > 0 {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	t.ch = r
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
