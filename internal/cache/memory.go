package cache

import (
	"context"
	"sync"
)

// MemoryTracker keeps feed status in process memory. It is used when Redis is
// not configured or not reachable, and in tests.
type MemoryTracker struct {
	mu   sync.Mutex
	data map[string]FeedStatus
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{data: make(map[string]FeedStatus)}
}

func (m *MemoryTracker) Close() error {
	return nil
}

func (m *MemoryTracker) Record(ctx context.Context, result FetchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.data[result.Source]
	apply(&status, result)
	m.data[result.Source] = status
	return nil
}

func (m *MemoryTracker) List(ctx context.Context) ([]FeedStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]FeedStatus, 0, len(m.data))
	for _, status := range m.data {
		statuses = append(statuses, status)
	}
	sortStatuses(statuses)
	return statuses, nil
}

func (m *MemoryTracker) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]FeedStatus)
	return nil
}
