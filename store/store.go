package store

import (
	"context"
	"errors"
)

var (
	// ErrQueueAlreadyExists is returned when trying to create a queue that already exists.
	ErrQueueAlreadyExists = errors.New("queue already exists")
	// ErrQueueDoesNotExist is returned when trying to operate on a queue that does not exist.
	ErrQueueDoesNotExist = errors.New("queue does not exist")
)

// QueueRecord is the persisted description of a queue.
type QueueRecord struct {
	Name       string
	Type       string
	Attributes map[string]string
	Tags       map[string]string
}

// MetadataStore persists queue definitions. Message bodies never reach it;
// they live in the Registry only.
type MetadataStore interface {
	// CreateQueue writes the queue row and all of its attribute and tag rows
	// in a single transaction and returns the new queue id.
	CreateQueue(ctx context.Context, rec QueueRecord) (int64, error)
	// ListQueues returns queue names in creation order, filtered by prefix
	// when it is non-empty and bounded by maxResults.
	ListQueues(ctx context.Context, maxResults int, prefix string) ([]string, error)
	// QueueNames returns every persisted queue name in creation order.
	QueueNames(ctx context.Context) ([]string, error)
	Close() error
}
