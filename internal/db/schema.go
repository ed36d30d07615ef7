package db

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		ticket_no VARCHAR(50) NOT NULL UNIQUE,
		user_id BIGINT NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		category VARCHAR(50) NOT NULL DEFAULT '',
		department VARCHAR(50) NOT NULL DEFAULT '',
		priority VARCHAR(20) NOT NULL DEFAULT '',
		sentiment VARCHAR(20) NOT NULL DEFAULT '',
		sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		location_district VARCHAR(50) NOT NULL DEFAULT '',
		location_street VARCHAR(100) NOT NULL DEFAULT '',
		location_detail TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		keywords TEXT NOT NULL DEFAULT '',
		solution_suggestion TEXT NOT NULL DEFAULT '',
		response_time BIGINT,
		ai_analysis JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_user_id ON tickets (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		full_name VARCHAR(100) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'citizen',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		ticket_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		content VARCHAR(500) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_ticket_id ON comments (ticket_id)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id BIGSERIAL PRIMARY KEY,
		ticket_id BIGINT NOT NULL UNIQUE,
		score INTEGER NOT NULL,
		feedback VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		ticket_id BIGINT NOT NULL DEFAULT 0,
		title VARCHAR(100) NOT NULL,
		content VARCHAR(500) NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_no TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT '',
		sentiment_score REAL NOT NULL DEFAULT 0,
		location_district TEXT NOT NULL DEFAULT '',
		location_street TEXT NOT NULL DEFAULT '',
		location_detail TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		keywords TEXT NOT NULL DEFAULT '',
		solution_suggestion TEXT NOT NULL DEFAULT '',
		response_time INTEGER,
		ai_analysis TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_user_id ON tickets (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'citizen',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_ticket_id ON comments (ticket_id)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id INTEGER NOT NULL UNIQUE,
		score INTEGER NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		ticket_id INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
}

// Migrate creates any missing tables and indexes. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.dialect == dialectPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.conn.exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect, err)
		}
	}
	return nil
}
