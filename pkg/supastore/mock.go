package supastore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockClient is an in-memory row store for testing
type MockClient struct {
	mu         sync.Mutex
	rows       map[string][]Row // table -> rows
	nextID     int64
	configured bool

	insertErr error
	selectErr error
	deleteErr error
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithInsertError sets an error to return from InsertRow
func WithInsertError(err error) MockOption {
	return func(m *MockClient) {
		m.insertErr = err
	}
}

// WithSelectError sets an error to return from SelectRows
func WithSelectError(err error) MockOption {
	return func(m *MockClient) {
		m.selectErr = err
	}
}

// WithDeleteError sets an error to return from the delete operations
func WithDeleteError(err error) MockOption {
	return func(m *MockClient) {
		m.deleteErr = err
	}
}

// WithRows seeds the mock with existing rows
func WithRows(table string, rows []Row) MockOption {
	return func(m *MockClient) {
		m.rows[table] = append(m.rows[table], rows...)
		for _, r := range rows {
			if r.ID >= m.nextID {
				m.nextID = r.ID + 1
			}
		}
	}
}

// NewMockClient creates a new in-memory mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		rows:       make(map[string][]Row),
		nextID:     1,
		configured: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InsertRow inserts one row, assigning id and created_at
func (m *MockClient) InsertRow(ctx context.Context, table string, row Row) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.nextID
	m.nextID++
	row.CreatedAt = time.Now()
	m.rows[table] = append(m.rows[table], row)
	return nil
}

// SelectRows returns all rows in the given order
func (m *MockClient) SelectRows(ctx context.Context, table string, order Order) ([]Row, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows[table]))
	copy(out, m.rows[table])
	if order.Column == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if order.Descending {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

// DeleteRowsEq deletes rows where the email column equals value
func (m *MockClient) DeleteRowsEq(ctx context.Context, table, column, value string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.deleteWhere(table, func(r Row) bool { return r.Email == value })
}

// DeleteRowsNeq deletes rows where the email column does not equal value
func (m *MockClient) DeleteRowsNeq(ctx context.Context, table, column, value string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.deleteWhere(table, func(r Row) bool { return r.Email != value })
}

func (m *MockClient) deleteWhere(table string, match func(Row) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []Row
	for _, r := range m.rows[table] {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	m.rows[table] = kept
	return nil
}

// Configured reports the configured flag (true by default)
func (m *MockClient) Configured() bool {
	return m.configured
}

// SetConfig marks the mock as configured
func (m *MockClient) SetConfig(baseURL, key string) {
	m.configured = baseURL != "" && key != ""
}

// RowCount returns the number of rows in a table (test helper)
func (m *MockClient) RowCount(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[table])
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
