package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/persondir/persondir/internal/models"
)

// MockStore is an in-memory implementation of Store for testing and
// offline use.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]models.Record),
	}
}

// EnsureConstraints is a no-op for the mock store.
func (m *MockStore) EnsureConstraints(_ context.Context) error {
	return nil
}

// Upsert inserts or updates a record in the mock store.
func (m *MockStore) Upsert(_ context.Context, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = copyRecord(rec)
	return nil
}

// Get retrieves a single record by ID.
func (m *MockStore) Get(_ context.Context, id string) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := copyRecord(rec)
	return &out, nil
}

// Delete removes a record by ID.
func (m *MockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

// List returns records with cursor-based pagination in ID order.
func (m *MockStore) List(_ context.Context, limit uint64, cursor string) ([]models.Record, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []models.Record
	for _, rec := range m.records {
		if cursor != "" && rec.ID <= cursor {
			continue
		}
		all = append(all, copyRecord(rec))
	}

	// Sort by ID for deterministic pagination.
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	var nextCursor string
	if limit > 0 && uint64(len(all)) > limit {
		all = all[:limit]
		nextCursor = all[len(all)-1].ID
	}

	return all, nextCursor, nil
}

// Count returns the number of stored records.
func (m *MockStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// Stats returns collection statistics computed from the in-memory store.
func (m *MockStore) Stats(_ context.Context) (*models.DirectoryStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.DirectoryStats{
		TotalPeople: int64(len(m.records)),
		ByAgeDecade: make(map[string]int64),
	}

	for _, rec := range m.records {
		if rec.Person.FavouriteFood != nil {
			stats.WithFavouriteFood++
		}
		stats.ByAgeDecade[models.AgeDecade(rec.Person.Age)]++
	}

	return stats, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close(_ context.Context) error {
	return nil
}

// copyRecord deep-copies the FavouriteFood pointer so that stored data and
// returned data never alias caller-held memory.
func copyRecord(rec models.Record) models.Record {
	if rec.Person.FavouriteFood != nil {
		food := *rec.Person.FavouriteFood
		rec.Person.FavouriteFood = &food
	}
	return rec
}
