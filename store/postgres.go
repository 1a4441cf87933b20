package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps queue metadata in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("applying postgres schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateQueue(ctx context.Context, rec QueueRecord) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	// No-op once committed.
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO queues (name, type) VALUES ($1, $2) RETURNING id`, rec.Name, rec.Type).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, ErrQueueAlreadyExists
		}
		return 0, fmt.Errorf("inserting queue %s: %w", rec.Name, err)
	}

	batch := &pgx.Batch{}
	for _, k := range sortedKeys(rec.Attributes) {
		batch.Queue(`INSERT INTO attributes (queue_id, name, value) VALUES ($1, $2, $3)`, id, k, rec.Attributes[k])
	}
	for _, k := range sortedKeys(rec.Tags) {
		batch.Queue(`INSERT INTO tags (queue_id, name, value) VALUES ($1, $2, $3)`, id, k, rec.Tags[k])
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("inserting attributes for %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing queue %s: %w", rec.Name, err)
	}
	return id, nil
}

func (s *PostgresStore) ListQueues(ctx context.Context, maxResults int, prefix string) ([]string, error) {
	if maxResults <= 0 {
		maxResults = math.MaxInt32
	}
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM queues WHERE left(name, length($1::text)) = $1::text ORDER BY id LIMIT $2`,
		prefix, maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing queues: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning queue names: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) QueueNames(ctx context.Context) ([]string, error) {
	return s.ListQueues(ctx, 0, "")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
