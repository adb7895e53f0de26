package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// MockReminderStore is a mock implementation of the ReminderStore
// interface backed by a map.
type MockReminderStore struct {
	mu   sync.Mutex
	rows map[uint32]domain.Reminder

	SaveFunc        func(ctx context.Context, r *domain.Reminder) error
	DeleteFunc      func(ctx context.Context, id uint32) error
	DeleteAllFunc   func(ctx context.Context) error
	LoadPendingFunc func(ctx context.Context) ([]domain.Reminder, error)
}

func NewMockReminderStore() *MockReminderStore {
	return &MockReminderStore{rows: make(map[uint32]domain.Reminder)}
}

func (m *MockReminderStore) Save(ctx context.Context, r *domain.Reminder) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = *r
	return nil
}

func (m *MockReminderStore) Delete(ctx context.Context, id uint32) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *MockReminderStore) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[uint32]domain.Reminder)
	return nil
}

func (m *MockReminderStore) LoadPending(ctx context.Context) ([]domain.Reminder, error) {
	if m.LoadPendingFunc != nil {
		return m.LoadPendingFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Reminder, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, nil
}

// Stored returns how many reminders are currently persisted.
func (m *MockReminderStore) Stored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
