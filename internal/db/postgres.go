package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type pgConn struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, url string) (*pgConn, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &pgConn{pool: pool}, nil
}

func (c *pgConn) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgConn) query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *pgConn) queryRow(ctx context.Context, query string, args ...any) row {
	return c.pool.QueryRow(ctx, query, args...)
}

func (c *pgConn) ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgConn) close() {
	c.pool.Close()
}

func (c *pgConn) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
