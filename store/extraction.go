package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by drivers when a delete matches no row.
var ErrNotFound = errors.New("not found")

// Extraction is the object representing one persisted extraction run.
type Extraction struct {
	ID        int32
	UID       string
	Source    string
	Input     string
	Reference int64 // unix seconds
	Timezone  string
	// Timestamps are unix seconds in text order.
	Timestamps []int64
	CreatedTs  int64
}

// FindExtraction is the find condition for extraction.
type FindExtraction struct {
	ID     *int32
	UID    *string
	Source *string

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteExtraction is the delete request for extraction.
type DeleteExtraction struct {
	UID string
}

// CreateExtraction persists a run, assigning a UID when none is set.
func (s *Store) CreateExtraction(ctx context.Context, create *Extraction) (*Extraction, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateExtraction(ctx, create)
}

// ListExtractions lists extractions with filter, newest first.
func (s *Store) ListExtractions(ctx context.Context, find *FindExtraction) ([]*Extraction, error) {
	return s.driver.ListExtractions(ctx, find)
}

// GetExtraction returns the first match or nil.
func (s *Store) GetExtraction(ctx context.Context, find *FindExtraction) (*Extraction, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListExtractions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteExtraction deletes a run by UID.
func (s *Store) DeleteExtraction(ctx context.Context, delete *DeleteExtraction) error {
	return s.driver.DeleteExtraction(ctx, delete)
}

// EncodeTimestamps renders timestamps as the comma separated column value.
func EncodeTimestamps(ts []int64) string {
	parts := make([]string, len(ts))
	for i, v := range ts {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// DecodeTimestamps parses the comma separated column value.
func DecodeTimestamps(s string) ([]int64, error) {
	if s == "" {
		return []int64{}, nil
	}
	parts := strings.Split(s, ",")
	ts := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timestamp %q", p)
		}
		ts[i] = v
	}
	return ts, nil
}
