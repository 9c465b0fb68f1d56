package lockout

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]*AttemptRecord
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]*AttemptRecord),
	}
}

func (mb *MemoryBackend) Get(_ context.Context, identifier string) (*AttemptRecord, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	record, exists := mb.data[identifier]
	if !exists {
		return nil, ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (mb *MemoryBackend) Set(_ context.Context, identifier string, record *AttemptRecord) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	recordCopy := *record
	mb.data[identifier] = &recordCopy
	return nil
}

func (mb *MemoryBackend) Delete(_ context.Context, identifier string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	delete(mb.data, identifier)
	return nil
}

func (mb *MemoryBackend) List(_ context.Context) (map[string]*AttemptRecord, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	copyData := make(map[string]*AttemptRecord, len(mb.data))
	for k, v := range mb.data {
		recordCopy := *v
		copyData[k] = &recordCopy
	}
	return copyData, nil
}

func (mb *MemoryBackend) Clear(_ context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.data = make(map[string]*AttemptRecord)
	return nil
}
