package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"picbot/internal/history"
	"picbot/migrations"
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
// An absent database file is created empty; a present but unreadable one
// fails here, at startup.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadHistory reads the full history snapshot, each feed's identifiers
// ordered oldest to newest.
func (s *SQLite) LoadHistory(ctx context.Context) (history.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT feed, post_id FROM sent_posts ORDER BY feed, seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sent posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := history.Snapshot{}
	for rows.Next() {
		var feed, postID string
		if err := rows.Scan(&feed, &postID); err != nil {
			return nil, fmt.Errorf("scan sent post: %w", err)
		}
		snap[feed] = append(snap[feed], postID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sent posts: %w", err)
	}
	return snap, nil
}

// SaveHistory rewrites the stored snapshot inside a single transaction.
func (s *SQLite) SaveHistory(ctx context.Context, snap history.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sent_posts`); err != nil {
		return fmt.Errorf("clear sent posts: %w", err)
	}

	feeds := make([]string, 0, len(snap))
	for feed := range snap {
		feeds = append(feeds, feed)
	}
	sort.Strings(feeds)

	for _, feed := range feeds {
		for seq, postID := range snap[feed] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sent_posts (feed, seq, post_id) VALUES (?, ?, ?)`,
				feed, seq, postID,
			); err != nil {
				return fmt.Errorf("insert sent post: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// ClearHistory removes the stored history of one feed, or of all feeds when
// feed is empty.
func (s *SQLite) ClearHistory(ctx context.Context, feed string) error {
	var err error
	if feed == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM sent_posts`)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM sent_posts WHERE feed = ?`, feed)
	}
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// LoadCursor returns the stored inbound update cursor, if any.
func (s *SQLite) LoadCursor(ctx context.Context) (int64, bool, error) {
	var cursor int64
	err := s.db.QueryRowContext(ctx,
		`SELECT update_id FROM update_cursor WHERE id = 1`,
	).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query cursor: %w", err)
	}
	return cursor, true, nil
}

// SaveCursor stores the inbound update cursor.
func (s *SQLite) SaveCursor(ctx context.Context, cursor int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO update_cursor (id, update_id) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET update_id = excluded.update_id`,
		cursor,
	)
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
