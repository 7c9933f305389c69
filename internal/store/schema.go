package store

import (
	"database/sql"
	"fmt"
)

// schema is applied on startup. The app has a single schema version;
// statements are idempotent so restarts are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		badges        TEXT NOT NULL DEFAULT '[]',
		favorites     TEXT NOT NULL DEFAULT '[]',
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		filename    TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		author      TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		likes       INTEGER NOT NULL DEFAULT 0,
		comments    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		filename   TEXT NOT NULL REFERENCES documents(filename) ON DELETE CASCADE,
		username   TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_filename ON comments(filename)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id           TEXT PRIMARY KEY,
		lesson_title TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		price        REAL NOT NULL DEFAULT 0,
		contact      TEXT NOT NULL,
		author       TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL,
		category   TEXT NOT NULL,
		author     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		body        TEXT NOT NULL,
		author      TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id)`,
}

func applySchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
