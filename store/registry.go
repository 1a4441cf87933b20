package store

import (
	"strings"
	"sync"

	"github.com/tabeth/quickq/models"
)

type queue struct {
	name     string
	tags     map[string]string
	messages []models.Message
}

// Registry holds the in-memory message queues keyed by name. A single
// RWMutex guards the whole map; callers must not do I/O while holding it,
// so every method copies what it needs and returns.
type Registry struct {
	mu     sync.RWMutex
	queues map[string]*queue
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]*queue)}
}

// CreateQueue registers an empty queue. It fails with ErrQueueAlreadyExists
// when the name is taken; the existing queue is left untouched.
func (r *Registry) CreateQueue(name string, tags map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queues[name]; ok {
		return ErrQueueAlreadyExists
	}
	r.add(name, tags)
	return nil
}

// EnsureQueue registers the queue if it is not already known.
func (r *Registry) EnsureQueue(name string, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queues[name]; !ok {
		r.add(name, tags)
	}
}

func (r *Registry) add(name string, tags map[string]string) {
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	r.queues[name] = &queue{name: name, tags: copied}
	r.order = append(r.order, name)
}

// Push appends msg to the tail of the named queue.
func (r *Registry) Push(name string, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[name]
	if !ok {
		return ErrQueueDoesNotExist
	}
	q.messages = append(q.messages, msg)
	return nil
}

// Pop removes the head of the named queue. The bool is false when the queue
// exists but is empty.
func (r *Registry) Pop(name string) (models.Message, bool, error) {
	msgs, err := r.PopN(name, 1)
	if err != nil || len(msgs) == 0 {
		return models.Message{}, false, err
	}
	return msgs[0], true, nil
}

// PopN removes up to max messages from the head of the named queue in one
// critical section.
func (r *Registry) PopN(name string, max int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[name]
	if !ok {
		return nil, ErrQueueDoesNotExist
	}
	if max <= 0 || len(q.messages) == 0 {
		return nil, nil
	}
	if max > len(q.messages) {
		max = len(q.messages)
	}
	out := make([]models.Message, max)
	copy(out, q.messages[:max])
	// Zero the popped slots so the backing array does not pin old bodies.
	for i := range q.messages[:max] {
		q.messages[i] = models.Message{}
	}
	q.messages = q.messages[max:]
	if len(q.messages) == 0 {
		q.messages = nil
	}
	return out, nil
}

// RemoveByID drops the first message with the given id. Removing an id that
// is not queued is a no-op.
func (r *Registry) RemoveByID(name, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[name]
	if !ok {
		return ErrQueueDoesNotExist
	}
	for i, m := range q.messages {
		if m.ID == id {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

// List returns at most maxResults queue names in creation order. A
// non-positive maxResults means no bound.
func (r *Registry) List(maxResults int, prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, name := range r.order {
		if maxResults > 0 && len(names) >= maxResults {
			break
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.queues[name]
	return ok
}

// Len returns the number of messages waiting in the named queue.
func (r *Registry) Len(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[name]
	if !ok {
		return 0, ErrQueueDoesNotExist
	}
	return len(q.messages), nil
}

// Tags returns a copy of the tags the queue was registered with.
func (r *Registry) Tags(name string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[name]
	if !ok {
		return nil, ErrQueueDoesNotExist
	}
	out := make(map[string]string, len(q.tags))
	for k, v := range q.tags {
		out[k] = v
	}
	return out, nil
}
