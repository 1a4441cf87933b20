package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tabeth/quickq/store"
)

// MockMetadataStore is a mock implementation of store.MetadataStore for testing.
type MockMetadataStore struct {
	mock.Mock
}

var _ store.MetadataStore = (*MockMetadataStore)(nil)

func (m *MockMetadataStore) CreateQueue(ctx context.Context, rec store.QueueRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockMetadataStore) ListQueues(ctx context.Context, maxResults int, prefix string) ([]string, error) {
	args := m.Called(ctx, maxResults, prefix)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	return names, args.Error(1)
}

func (m *MockMetadataStore) QueueNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	return names, args.Error(1)
}

func (m *MockMetadataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
