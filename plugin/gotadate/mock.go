package gotadate

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockExtractor is a mock implementation of Extractor for testing.
type MockExtractor struct {
	mock.Mock
}

// NewMockExtractor creates a new MockExtractor.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract records the call and returns the configured result.
func (m *MockExtractor) Extract(ctx context.Context, input string, opts Options) (*Result, error) {
	args := m.Called(ctx, input, opts)
	res, _ := args.Get(0).(*Result)
	return res, args.Error(1)
}

// ExtractReader records the call and returns the configured result.
func (m *MockExtractor) ExtractReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	args := m.Called(ctx, r, opts)
	res, _ := args.Get(0).(*Result)
	return res, args.Error(1)
}

var (
	_ Extractor = (*Service)(nil)
	_ Extractor = (*MockExtractor)(nil)
)
