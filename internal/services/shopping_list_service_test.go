// internal/services/shopping_list_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
)

func newSyncFixture() (*ProductService, *ShoppingListService, *store.MemoryStore) {
	memStore := store.NewMemoryStore()
	history := NewConsumptionService(memStore)
	products := NewProductService(memStore, history)
	shopping := NewShoppingListService(memStore, products)
	products.SetSyncer(shopping)
	return products, shopping, memStore
}

func openItems(t *testing.T, shopping *ShoppingListService, householdID string) []models.ShoppingListItem {
	t.Helper()
	items, err := shopping.List(context.Background(), householdID, false)
	require.NoError(t, err)
	return items
}

func TestLowTransitionCreatesItem(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 8)
	require.NoError(t, err)

	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, product.Name, item.ProductName)
	assert.Equal(t, models.ReasonLow, item.Reason)
	assert.Equal(t, models.PriorityMedium, item.Priority)
	assert.Equal(t, 8.0, item.Quantity)
	assert.False(t, item.IsOutOfStock)
	assert.Equal(t, models.StatusLow, item.OriginalStatus)

	reloaded, err := products.Get(ctx, "h1", product.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AutoAddedToShopping)
}

func TestDirectTransitionToOut(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 4, 4)

	_, err := products.Consume(ctx, "h1", product.ID, 4)
	require.NoError(t, err)

	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	assert.Equal(t, models.ReasonOut, items[0].Reason)
	assert.Equal(t, models.PriorityHigh, items[0].Priority)
	assert.True(t, items[0].IsOutOfStock)
	assert.Equal(t, 4.0, items[0].Quantity)
}

// A second low transition while an open item exists must not add another one.
func TestRepeatedTransitionsDoNotDuplicate(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	require.Len(t, openItems(t, shopping, "h1"), 1)

	// refill by hand, then drop to low again while the item is still open
	full := 10.0
	_, err = products.Update(ctx, "h1", product.ID, &UpdateProductRequest{QuantityCurrent: &full})
	require.NoError(t, err)
	_, err = products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)

	assert.Len(t, openItems(t, shopping, "h1"), 1)
}

// low to out escalates the existing item in place instead of inserting a
// second one.
func TestEscalationMutatesExistingItem(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 8)
	require.NoError(t, err)
	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	originalID := items[0].ID

	_, err = products.Consume(ctx, "h1", product.ID, 2)
	require.NoError(t, err)

	items = openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, originalID, item.ID)
	assert.Equal(t, models.ReasonOut, item.Reason)
	assert.Equal(t, models.PriorityHigh, item.Priority)
	assert.True(t, item.IsOutOfStock)
	assert.Equal(t, 10.0, item.Quantity)
	assert.Contains(t, item.Notes, "se agotó por completo")
}

// Stock recovering does not touch the list: the household decides when an
// item leaves it.
func TestNoAutoDemotion(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	require.Len(t, openItems(t, shopping, "h1"), 1)

	full := 10.0
	_, err = products.Update(ctx, "h1", product.ID, &UpdateProductRequest{QuantityCurrent: &full})
	require.NoError(t, err)

	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	assert.Equal(t, models.ReasonLow, items[0].Reason)
}

func TestMarkPurchasedRestoresProduct(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 6, 6)

	_, err := products.Consume(ctx, "h1", product.ID, 6)
	require.NoError(t, err)
	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)

	purchased, err := shopping.MarkPurchased(ctx, "h1", items[0].ID)
	require.NoError(t, err)
	assert.True(t, purchased.Checked)
	require.NotNil(t, purchased.PurchasedAt)

	reloaded, err := products.Get(ctx, "h1", product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, reloaded.QuantityCurrent)
	assert.Equal(t, models.StatusAvailable, reloaded.Status)
	assert.False(t, reloaded.AutoAddedToShopping)

	// checked items drop out of the default listing
	assert.Empty(t, openItems(t, shopping, "h1"))
	all, err := shopping.List(ctx, "h1", true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMarkPurchasedTwice(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 6, 6)

	_, err := products.Consume(ctx, "h1", product.ID, 6)
	require.NoError(t, err)
	items, err := shopping.List(ctx, "h1", false)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = shopping.MarkPurchased(ctx, "h1", items[0].ID)
	require.NoError(t, err)

	var stateErr *InvalidStateError
	_, err = shopping.MarkPurchased(ctx, "h1", items[0].ID)
	require.ErrorAs(t, err, &stateErr)
}

func TestAddManualItemDefaults(t *testing.T) {
	_, shopping, _ := newSyncFixture()

	item, err := shopping.AddManualItem(context.Background(), "h1", &AddManualItemRequest{
		ProductName: "Servilletas",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, models.UnitCount, item.Unit)
	assert.Equal(t, models.ReasonManual, item.Reason)
	assert.Equal(t, models.PriorityLow, item.Priority)
	assert.Empty(t, item.ProductID)
}

func TestAddManualItemValidation(t *testing.T) {
	_, shopping, _ := newSyncFixture()

	var validationErr *ValidationError
	_, err := shopping.AddManualItem(context.Background(), "h1", &AddManualItemRequest{
		ProductName: "",
		Quantity:    -1,
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 2)
}

// A lost sync write leaves the list out of step with product status; the
// sweep repairs it, and running the sweep again changes nothing.
func TestSweepRepairsDriftAndIsIdempotent(t *testing.T) {
	products, shopping, memStore := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	// the transition's list insert fails and is swallowed
	memStore.FailNext["insert"] = true
	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	assert.Empty(t, openItems(t, shopping, "h1"))

	synced, failed, err := shopping.SyncAllProductsWithShoppingList(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, 0, failed)
	require.Len(t, openItems(t, shopping, "h1"), 1)

	synced, failed, err = shopping.SyncAllProductsWithShoppingList(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, 0, failed)
	assert.Len(t, openItems(t, shopping, "h1"), 1)
}

func TestSweepEscalatesStaleItem(t *testing.T) {
	products, shopping, memStore := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	require.Len(t, openItems(t, shopping, "h1"), 1)

	// the sync reaction loses its item lookup; the product still reaches out
	memStore.FailNext["query"] = true
	_, err = products.Consume(ctx, "h1", product.ID, 1)
	require.NoError(t, err)

	stale := openItems(t, shopping, "h1")
	require.Len(t, stale, 1)
	require.Equal(t, models.ReasonLow, stale[0].Reason)

	_, _, err = shopping.SyncAllProductsWithShoppingList(ctx, "h1")
	require.NoError(t, err)

	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)
	assert.Equal(t, models.ReasonOut, items[0].Reason)
}

func TestDeleteProductCascadesOpenItems(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	require.Len(t, openItems(t, shopping, "h1"), 1)

	require.NoError(t, products.Delete(ctx, "h1", product.ID))
	assert.Empty(t, openItems(t, shopping, "h1"))
}

// Purchased items are history and survive the product's deletion.
func TestDeleteProductKeepsPurchasedItems(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()
	product := createTestProduct(t, products, "h1", 10, 10)

	_, err := products.Consume(ctx, "h1", product.ID, 9)
	require.NoError(t, err)
	items := openItems(t, shopping, "h1")
	require.Len(t, items, 1)

	_, err = shopping.MarkPurchased(ctx, "h1", items[0].ID)
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, "h1", product.ID))

	all, err := shopping.List(ctx, "h1", true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListOrdersByPriority(t *testing.T) {
	products, shopping, _ := newSyncFixture()
	ctx := context.Background()

	_, err := shopping.AddManualItem(ctx, "h1", &AddManualItemRequest{ProductName: "Esponjas"})
	require.NoError(t, err)

	product := createTestProduct(t, products, "h1", 4, 4)
	_, err = products.Consume(ctx, "h1", product.ID, 4)
	require.NoError(t, err)

	items := openItems(t, shopping, "h1")
	require.Len(t, items, 2)
	assert.Equal(t, models.PriorityHigh, items[0].Priority)
	assert.Equal(t, models.PriorityLow, items[1].Priority)
}

func TestShoppingItemHouseholdScoping(t *testing.T) {
	_, shopping, _ := newSyncFixture()
	ctx := context.Background()

	item, err := shopping.AddManualItem(ctx, "h1", &AddManualItemRequest{ProductName: "Pan"})
	require.NoError(t, err)

	var notFound *NotFoundError
	_, err = shopping.MarkPurchased(ctx, "h2", item.ID)
	require.ErrorAs(t, err, &notFound)
	require.ErrorAs(t, shopping.DeleteItem(ctx, "h2", item.ID), &notFound)
}
