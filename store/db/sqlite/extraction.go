package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/gotadate/store"
)

func (d *DB) CreateExtraction(ctx context.Context, create *store.Extraction) (*store.Extraction, error) {
	fields := []string{"uid", "source", "input", "reference_ts", "timezone", "timestamps"}
	placeholderValues := []any{
		create.UID, create.Source, create.Input, create.Reference, create.Timezone,
		store.EncodeTimestamps(create.Timestamps),
	}
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO extraction (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create extraction: %w", err)
	}

	return create, nil
}

func (d *DB) ListExtractions(ctx context.Context, find *store.FindExtraction) ([]*store.Extraction, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Source; v != nil {
		where, args = append(where, "source = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, source, input, reference_ts, timezone, timestamps, created_ts
		FROM extraction
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Extraction, 0)
	for rows.Next() {
		var extraction store.Extraction
		var timestamps string
		if err := rows.Scan(
			&extraction.ID,
			&extraction.UID,
			&extraction.Source,
			&extraction.Input,
			&extraction.Reference,
			&extraction.Timezone,
			&timestamps,
			&extraction.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		if extraction.Timestamps, err = store.DecodeTimestamps(timestamps); err != nil {
			return nil, fmt.Errorf("failed to decode extraction %s: %w", extraction.UID, err)
		}
		list = append(list, &extraction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extractions: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteExtraction(ctx context.Context, delete *store.DeleteExtraction) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM extraction WHERE uid = `+placeholder(1), delete.UID)
	if err != nil {
		return fmt.Errorf("failed to delete extraction: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("extraction %s: %w", delete.UID, store.ErrNotFound)
	}
	return nil
}
