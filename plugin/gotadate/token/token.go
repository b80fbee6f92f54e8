// Package token splits free-form text into the classified tokens consumed by
// the date parser.
package token

import (
	"fmt"
	"strings"
)

// Kind represents the class of a token.
type Kind uint8

const (
	KindNumber Kind = iota
	KindWord
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindWord:
		return "word"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Token is an immutable lexical unit. Exactly one payload field is meaningful,
// selected by Kind.
type Token struct {
	kind      Kind
	number    int64
	word      string
	separator rune

	line   int
	column int
}

// NewNumber creates a Number token.
func NewNumber(v int64, line, col int) *Token {
	return &Token{kind: KindNumber, number: v, line: line, column: col}
}

// NewWord creates a Word token. Case is preserved.
func NewWord(v string, line, col int) *Token {
	return &Token{kind: KindWord, word: v, line: line, column: col}
}

// NewSeparator creates a Separator token.
func NewSeparator(v rune, line, col int) *Token {
	return &Token{kind: KindSeparator, separator: v, line: line, column: col}
}

// Kind returns the token class.
func (t *Token) Kind() Kind {
	return t.kind
}

// Int returns the payload of a Number token, 0 otherwise.
func (t *Token) Int() int64 {
	return t.number
}

// Text returns the payload of a Word token, "" otherwise.
func (t *Token) Text() string {
	return t.word
}

// Char returns the payload of a Separator token, 0 otherwise.
func (t *Token) Char() rune {
	return t.separator
}

// Line returns the 1-based line of the token's first character.
func (t *Token) Line() int {
	return t.line
}

// Column returns the 1-based column of the token's first character.
func (t *Token) Column() int {
	return t.column
}

// Is reports whether t is the separator ch. A nil token never matches.
func (t *Token) Is(ch rune) bool {
	return t != nil && t.kind == KindSeparator && t.separator == ch
}

// IsWord reports whether t is a word equal to s, ignoring case.
func (t *Token) IsWord(s string) bool {
	return t != nil && t.kind == KindWord && strings.EqualFold(t.word, s)
}

// IsNumber reports whether t is a Number token.
func (t *Token) IsNumber() bool {
	return t != nil && t.kind == KindNumber
}

func (t *Token) String() string {
	if t == nil {
		return "<eof>"
	}
	switch t.kind {
	case KindNumber:
		return fmt.Sprintf("%s(%d)@%d:%d", t.kind, t.number, t.line, t.column)
	case KindWord:
		return fmt.Sprintf("%s(%q)@%d:%d", t.kind, t.word, t.line, t.column)
	default:
		return fmt.Sprintf("%s(%q)@%d:%d", t.kind, t.separator, t.line, t.column)
	}
}
