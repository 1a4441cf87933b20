package store

import "sort"

// The two dialects differ only in how the queue id is generated and how the
// creation time defaults.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS queues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS attributes (
		queue_id INTEGER NOT NULL REFERENCES queues(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		queue_id INTEGER NOT NULL REFERENCES queues(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attributes_queue_id ON attributes(queue_id)`,
	`CREATE INDEX IF NOT EXISTS tags_queue_id ON tags(queue_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS queues (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attributes (
		queue_id BIGINT NOT NULL REFERENCES queues(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		queue_id BIGINT NOT NULL REFERENCES queues(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attributes_queue_id ON attributes(queue_id)`,
	`CREATE INDEX IF NOT EXISTS tags_queue_id ON tags(queue_id)`,
}

// sortedKeys gives attribute and tag rows a stable insertion order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
