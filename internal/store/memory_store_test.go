// internal/store/memory_store_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, CollectionProducts, map[string]interface{}{
		"householdId": "h1",
		"name":        "Leche",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.GetByID(ctx, CollectionProducts, id)
	require.NoError(t, err)
	assert.Equal(t, "Leche", rec.Data["name"])

	require.NoError(t, s.Update(ctx, CollectionProducts, id, map[string]interface{}{"name": "Leche entera"}))
	rec, err = s.GetByID(ctx, CollectionProducts, id)
	require.NoError(t, err)
	assert.Equal(t, "Leche entera", rec.Data["name"])

	require.NoError(t, s.Delete(ctx, CollectionProducts, id))
	_, err = s.GetByID(ctx, CollectionProducts, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, CollectionProducts, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, CollectionProducts, "nope", map[string]interface{}{"a": 1}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, CollectionProducts, "nope"), ErrNotFound)
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, CollectionShoppingList, map[string]interface{}{"householdId": "h1", "productId": "p1"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, CollectionShoppingList, map[string]interface{}{"householdId": "h1", "productId": "p2"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, CollectionShoppingList, map[string]interface{}{"householdId": "h2", "productId": "p1"})
	require.NoError(t, err)

	recs, err := s.Query(ctx, CollectionShoppingList, []Filter{
		{Field: "householdId", Value: "h1"},
		{Field: "productId", Value: "p1"},
	}, Options{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = s.Query(ctx, CollectionShoppingList, []Filter{{Field: "householdId", Value: "h1"}}, Options{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestMemoryStoreQueryOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, CollectionConsumptionLogs, map[string]interface{}{
			"householdId": "h1",
			"createdAt":   base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
		})
		require.NoError(t, err)
	}

	recs, err := s.Query(ctx, CollectionConsumptionLogs, nil, Options{
		OrderBy: "createdAt", Descending: true, Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0].Data["createdAt"].(string)
	second := recs[1].Data["createdAt"].(string)
	assert.Greater(t, first, second)
}

// FailNext trips exactly one call, then the store recovers.
func TestMemoryStoreFailNextIsOneShot(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.FailNext["insert"] = true
	_, err := s.Insert(ctx, CollectionProducts, map[string]interface{}{"name": "x"})
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, err = s.Insert(ctx, CollectionProducts, map[string]interface{}{"name": "x"})
	assert.NoError(t, err)
}
