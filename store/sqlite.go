package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps queue metadata in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// SQLite allows one writer at a time, and an in-memory database is
	// private to its connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateQueue(ctx context.Context, rec QueueRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO queues (name, type) VALUES (?, ?)`, rec.Name, rec.Type)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return 0, ErrQueueAlreadyExists
		}
		return 0, fmt.Errorf("inserting queue %s: %w", rec.Name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading queue id: %w", err)
	}

	for _, k := range sortedKeys(rec.Attributes) {
		if _, err = tx.ExecContext(ctx, `INSERT INTO attributes (queue_id, name, value) VALUES (?, ?, ?)`, id, k, rec.Attributes[k]); err != nil {
			return 0, fmt.Errorf("inserting attribute %s: %w", k, err)
		}
	}
	for _, k := range sortedKeys(rec.Tags) {
		if _, err = tx.ExecContext(ctx, `INSERT INTO tags (queue_id, name, value) VALUES (?, ?, ?)`, id, k, rec.Tags[k]); err != nil {
			return 0, fmt.Errorf("inserting tag %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing queue %s: %w", rec.Name, err)
	}
	return id, nil
}

func (s *SQLiteStore) ListQueues(ctx context.Context, maxResults int, prefix string) ([]string, error) {
	if maxResults <= 0 {
		maxResults = math.MaxInt32
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM queues WHERE substr(name, 1, length(?1)) = ?1 ORDER BY id LIMIT ?2`,
		prefix, maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing queues: %w", err)
	}
	return scanNames(rows)
}

func (s *SQLiteStore) QueueNames(ctx context.Context) ([]string, error) {
	return s.ListQueues(ctx, 0, "")
}

// Attributes returns the persisted attributes of a queue.
func (s *SQLiteStore) Attributes(ctx context.Context, name string) (map[string]string, error) {
	return s.pairs(ctx, `SELECT a.name, a.value FROM attributes a JOIN queues q ON q.id = a.queue_id WHERE q.name = ?`, name)
}

// Tags returns the persisted tags of a queue.
func (s *SQLiteStore) Tags(ctx context.Context, name string) (map[string]string, error) {
	return s.pairs(ctx, `SELECT t.name, t.value FROM tags t JOIN queues q ON q.id = t.queue_id WHERE q.name = ?`, name)
}

func (s *SQLiteStore) pairs(ctx context.Context, query, name string) (map[string]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM queues WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueDoesNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("looking up queue %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("reading queue %s: %w", name, err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
