// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
)

// Logical collections. The store gives no multi-record transactions and no
// compound indexes; callers may only rely on single-field equality filters
// being efficient and must do any further filtering and sorting in memory.
const (
	CollectionProducts        = "products"
	CollectionShoppingList    = "shopping_list"
	CollectionConsumptionLogs = "consumption_logs"
)

// ErrNotFound is returned when a referenced id does not exist.
var ErrNotFound = errors.New("record not found")

// UnavailableError wraps an adapter failure (network, timeout, backend down).
// Primary mutations surface it to the caller; secondary effects catch and log it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Record is a keyed document as stored.
type Record struct {
	ID   string
	Data map[string]interface{}
}

// Filter is a single-field equality predicate.
type Filter struct {
	Field string
	Value interface{}
}

// Options narrows a query. OrderBy is best-effort: adapters honor it for the
// record timestamp only, callers re-sort in memory for anything else.
type Options struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// RecordStore is the keyed-record contract the core is written against.
type RecordStore interface {
	Insert(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	GetByID(ctx context.Context, collection, id string) (*Record, error)
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters []Filter, opts Options) ([]Record, error)
}
