package stubs

import (
	"context"
	"sync"
)

// MockStore is an in-memory implementation of the RowStore interface for testing
type MockStore struct {
	mu   sync.RWMutex
	rows [][]string
	err  error
}

// NewMockStore creates a new mock row store
func NewMockStore() *MockStore {
	return &MockStore{
		rows: make([][]string, 0),
	}
}

// Initialize does nothing for mock store
func (m *MockStore) Initialize(ctx context.Context) error {
	return nil
}

// FailWith makes every following AppendRow return err. A nil err restores normal behaviour.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// AppendRow stores a copy of the row
func (m *MockStore) AppendRow(ctx context.Context, columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	row := make([]string, len(columns))
	copy(row, columns)
	m.rows = append(m.rows, row)
	return nil
}

// Rows returns all appended rows in insertion order
func (m *MockStore) Rows() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		rows[i] = append([]string(nil), r...)
	}
	return rows
}

// Close does nothing for mock store
func (m *MockStore) Close() error {
	return nil
}
