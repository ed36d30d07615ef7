package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// row and rows are the common surface of pgx and database/sql results.
type row interface {
	Scan(dest ...any) error
}

type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type conn interface {
	exec(ctx context.Context, query string, args ...any) (int64, error)
	query(ctx context.Context, query string, args ...any) (rows, error)
	queryRow(ctx context.Context, query string, args ...any) row
	ping(ctx context.Context) error
	close()
	isUniqueViolation(err error) bool
}

// Store persists tickets, users, comments, ratings and notifications in
// PostgreSQL or SQLite. Queries are written with '?' placeholders.
type Store struct {
	conn    conn
	dialect dialect
	now     func() time.Time
}

// Open connects to the database named by url: postgres:// and postgresql://
// go to pgx, everything else (sqlite://, file:, plain paths) to SQLite.
func Open(ctx context.Context, url string) (*Store, error) {
	var (
		c   conn
		d   dialect
		err error
	)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		c, err = openPostgres(ctx, url)
		d = dialectPostgres
	default:
		c, err = openSQLite(ctx, sqlitePath(url))
		d = dialectSQLite
	}
	if err != nil {
		return nil, err
	}
	return &Store{conn: c, dialect: d, now: time.Now}, nil
}

func (s *Store) Close() {
	s.conn.close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.ping(ctx)
}

// Backend names the driver in use.
func (s *Store) Backend() string {
	return s.dialect.String()
}

// rebind rewrites '?' placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	n, err := s.conn.exec(ctx, s.rebind(query), args...)
	return n, s.translate(err)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := s.conn.query(ctx, s.rebind(query), args...)
	return r, s.translate(err)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) row {
	return s.conn.queryRow(ctx, s.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, s.translate(err)
	}
	return id, nil
}

// translate maps driver errors onto the package sentinels.
func (s *Store) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case s.conn.isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// timestamp normalizes a time for storage. SQLite keeps second precision in
// UTC so that stored values compare correctly as text.
func (s *Store) timestamp(t time.Time) time.Time {
	if s.dialect == dialectSQLite {
		return t.UTC().Truncate(time.Second)
	}
	return t.UTC().Truncate(time.Microsecond)
}

func (s *Store) stamp() time.Time {
	return s.timestamp(s.now())
}
