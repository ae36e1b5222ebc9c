// internal/store/memory_store.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hogarlab/despensa-backend/internal/models"
)

// MemoryStore implements RecordStore for tests. It honors the same contract as
// the gorm adapter: equality filters compare string forms, ordering only by
// record timestamp, no transactions.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]map[string]interface{} // collection -> id -> data
	inserts map[string][]string                          // collection -> ids in insert order

	// FailNext, when set, makes the next call of that operation fail with an
	// UnavailableError. Used to exercise best-effort paths.
	FailNext map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]map[string]map[string]interface{}),
		inserts:  make(map[string][]string),
		FailNext: make(map[string]bool),
	}
}

func (s *MemoryStore) failing(op string) bool {
	if s.FailNext[op] {
		s.FailNext[op] = false
		return true
	}
	return false
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing("insert") {
		return "", &UnavailableError{Op: "insert", Err: context.DeadlineExceeded}
	}

	if s.records[collection] == nil {
		s.records[collection] = make(map[string]map[string]interface{})
	}
	id := uuid.New().String()
	s.records[collection][id] = cloneData(data)
	s.inserts[collection] = append(s.inserts[collection], id)
	return id, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, collection, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing("get") {
		return nil, &UnavailableError{Op: "get", Err: context.DeadlineExceeded}
	}

	data, ok := s.records[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Record{ID: id, Data: cloneData(data)}, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing("update") {
		return &UnavailableError{Op: "update", Err: context.DeadlineExceeded}
	}

	data, ok := s.records[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		data[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing("delete") {
		return &UnavailableError{Op: "delete", Err: context.DeadlineExceeded}
	}

	if _, ok := s.records[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.records[collection], id)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter, opts Options) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing("query") {
		return nil, &UnavailableError{Op: "query", Err: context.DeadlineExceeded}
	}

	var out []Record
	for _, id := range s.inserts[collection] {
		data, ok := s.records[collection][id]
		if !ok {
			continue
		}
		match := true
		for _, f := range filters {
			if fmt.Sprint(data[f.Field]) != fmt.Sprint(f.Value) {
				match = false
				break
			}
		}
		if match {
			out = append(out, Record{ID: id, Data: cloneData(data)})
		}
	}

	if opts.OrderBy == "createdAt" || opts.OrderBy == "addedAt" {
		sort.SliceStable(out, func(i, j int) bool {
			ti := models.AsTime(out[i].Data[opts.OrderBy])
			tj := models.AsTime(out[j].Data[opts.OrderBy])
			if opts.Descending {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Count reports how many records a collection holds. Test helper.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[collection])
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
