package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Postgres driver registered for callers opening the archive by DSN
	_ "github.com/lib/pq"
)

// Default names for the weewx archive table and its columns
const (
	DefaultTable = "archive"
)

// SQLStore answers aggregate queries against a weewx archive table
// (columns dateTime, usUnits, rain) through database/sql.
type SQLStore struct {
	db           *sql.DB
	table        string
	queryTimeout time.Duration
}

var _ Archive = (*SQLStore)(nil)

// SQLOption configures a SQLStore
type SQLOption func(*SQLStore)

// WithTable overrides the archive table name
func WithTable(table string) SQLOption {
	return func(s *SQLStore) {
		s.table = table
	}
}

// WithQueryTimeout bounds each aggregate query
func WithQueryTimeout(d time.Duration) SQLOption {
	return func(s *SQLStore) {
		s.queryTimeout = d
	}
}

// NewSQLStore wraps an open database handle
func NewSQLStore(db *sql.DB, opts ...SQLOption) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("archive: nil database handle")
	}
	s := &SQLStore{
		db:           db,
		table:        DefaultTable,
		queryTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open opens a Postgres archive by DSN
func Open(dsn string, opts ...SQLOption) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	return NewSQLStore(db, opts...)
}

// AggregateRain sums rain over the window and reports the unit-system
// bounds of the matched rows
func (s *SQLStore) AggregateRain(ctx context.Context, fromTS, toTS int64, fromInclusive, toInclusive bool) (RainAggregate, error) {
	fromOp := ">"
	if fromInclusive {
		fromOp = ">="
	}
	toOp := "<"
	if toInclusive {
		toOp = "<="
	}

	query := fmt.Sprintf(
		`SELECT SUM(rain), MIN("usUnits"), MAX("usUnits"), COUNT(*) FROM %s WHERE "dateTime" %s $1 AND "dateTime" %s $2`,
		s.table, fromOp, toOp)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		sum      sql.NullFloat64
		minUnits sql.NullInt64
		maxUnits sql.NullInt64
		rows     int
	)
	if err := s.db.QueryRowContext(ctx, query, fromTS, toTS).Scan(&sum, &minUnits, &maxUnits, &rows); err != nil {
		return RainAggregate{}, fmt.Errorf("archive: aggregate rain: %w", err)
	}

	agg := RainAggregate{
		MinUnits: int(minUnits.Int64),
		MaxUnits: int(maxUnits.Int64),
		Rows:     rows,
	}
	if sum.Valid {
		v := sum.Float64
		agg.Sum = &v
	}
	return agg, nil
}

// Close closes the underlying database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}
