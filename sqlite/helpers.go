package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// querier is satisfied by both *DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
// SQLite requires a LIMIT before OFFSET, so an offset alone uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// getValue decodes the JSON value stored under area/key into v.
// Reports false if the key does not exist.
func getValue(ctx context.Context, q querier, area, key string, v any) (bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, "SELECT value FROM storage WHERE area = ? AND key = ?", area, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", area, key, err)
	}
	return true, nil
}

// setValue stores v as JSON under area/key, replacing any previous value.
func setValue(ctx context.Context, q querier, area, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", area, key, err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO storage (area, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (area, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, area, key, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// removeValue deletes area/key. Removing a missing key is not an error.
func removeValue(ctx context.Context, q querier, area, key string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM storage WHERE area = ? AND key = ?", area, key)
	return err
}
