// Package store moves tables between PostgreSQL and frames.
//
// Reads go through a plain query and pgx's generic row values; writes use
// COPY. Values arriving from the database are normalized to the cell types
// the frame package works with: int, float64, string, bool and time.Time.
package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store loads and saves frames. A zero MaxRows disables the row cap.
type Store struct {
	db      DBTX
	maxRows int
}

// New creates a Store over db.
func New(db DBTX, maxRows int) *Store {
	return &Store{db: db, maxRows: maxRows}
}

// Identifier parses a possibly schema-qualified table name such as
// "public.invoices".
func Identifier(table string) (pgx.Identifier, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return nil, errs.Valuef("invalid table name %q", table)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, errs.Valuef("invalid table name %q", table)
		}
	}
	return pgx.Identifier(parts), nil
}

// LoadTable reads every row of table. Columns named in index become the
// frame's index.
func (s *Store) LoadTable(ctx context.Context, table string, index ...string) (*frame.Frame, error) {
	id, err := Identifier(table)
	if err != nil {
		return nil, err
	}
	f, err := s.LoadQuery(ctx, "SELECT * FROM "+id.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", table, err)
	}
	if len(index) > 0 {
		return f.SetIndex(frame.Labels(index...)...)
	}
	return f, nil
}

// LoadQuery runs sql and collects the result into a frame.
func (s *Store) LoadQuery(ctx context.Context, sql string, args ...any) (*frame.Frame, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]frame.Label, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var data [][]any
	for rows.Next() {
		if s.maxRows > 0 && len(data) >= s.maxRows {
			return nil, errs.Valuef("query returned more than %d rows", s.maxRows)
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeDBValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frame.FromRows(columns, data, nil)
}

// SaveTable copies f into an existing table and returns the rows written.
// With includeIndex the index levels are written first, named as
// Frame.ResetIndex would name them.
func (s *Store) SaveTable(ctx context.Context, table string, f *frame.Frame, includeIndex bool) (int64, error) {
	id, err := Identifier(table)
	if err != nil {
		return 0, err
	}
	if includeIndex {
		if f, err = f.ResetIndex(); err != nil {
			return 0, err
		}
	}

	labels := f.Columns()
	columns := make([]string, len(labels))
	for i, l := range labels {
		name, ok := l.(string)
		if !ok || name == "" {
			return 0, errs.Typef("column names must be non-empty strings to save, got: %s", frame.FormatLabel(l))
		}
		columns[i] = name
	}

	n, err := s.db.CopyFrom(ctx, id, columns, pgx.CopyFromSlice(f.Len(), func(i int) ([]any, error) {
		row := f.Row(i)
		for c, v := range row {
			row[c] = toDBValue(v)
		}
		return row, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Truncate empties table before a full reload.
func (s *Store) Truncate(ctx context.Context, table string) error {
	id, err := Identifier(table)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, "TRUNCATE "+id.Sanitize())
	return err
}

// normalizeDBValue maps the values pgx decodes into frame cell types.
func normalizeDBValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if x.NaN {
			return math.NaN()
		}
		if x.Exp >= 0 && x.InfinityModifier == pgtype.Finite {
			if i, err := x.Int64Value(); err == nil && i.Valid {
				return int(i.Int64)
			}
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.UUID:
		if !x.Valid {
			return nil
		}
		return uuid.UUID(x.Bytes).String()
	case []byte:
		return string(x)
	case time.Time:
		return x
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Text:
		if !x.Valid {
			return nil
		}
		return x.String
	case string, bool, float64, float32, int, int8, int16, int32, int64:
		return frame.Normalize(x)
	default:
		return fmt.Sprint(x)
	}
}

// toDBValue turns a frame cell into something pgx can encode.
func toDBValue(v any) any {
	if frame.IsNull(v) {
		return nil
	}
	return v
}
