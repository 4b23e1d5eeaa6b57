package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ HistoryStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS inclusions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			digest TEXT,
			headings INTEGER,
			error TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_inclusions_path ON inclusions(path);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inclusions (id, path, status, digest, headings, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Path, rec.Status, rec.Digest, rec.Headings, rec.Error, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save inclusion %s: %w", rec.Path, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.query(ctx, `
		SELECT id, path, status, digest, headings, error, created_at
		FROM inclusions ORDER BY created_at DESC, seq DESC LIMIT ?
	`, limit)
}

func (s *SQLiteStore) FindByPath(ctx context.Context, path string) ([]Record, error) {
	return s.query(ctx, `
		SELECT id, path, status, digest, headings, error, created_at
		FROM inclusions WHERE path = ? ORDER BY created_at DESC, seq DESC
	`, path)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var digest, errText sql.NullString
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Status, &digest, &rec.Headings, &errText, &created); err != nil {
			return nil, err
		}
		rec.Digest = digest.String
		rec.Error = errText.String
		rec.CreatedAt = time.Unix(0, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}
