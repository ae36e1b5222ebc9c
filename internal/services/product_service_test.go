// internal/services/product_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
)

func newProductFixture() (*ProductService, *ConsumptionService, *store.MemoryStore) {
	memStore := store.NewMemoryStore()
	history := NewConsumptionService(memStore)
	products := NewProductService(memStore, history)
	return products, history, memStore
}

func createTestProduct(t *testing.T, svc *ProductService, householdID string, total, current float64) *models.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), householdID, &CreateProductRequest{
		Name:            "Leche entera",
		Category:        models.CategoryDairy,
		Unit:            models.UnitVolume,
		QuantityTotal:   total,
		QuantityCurrent: &current,
	})
	require.NoError(t, err)
	return product
}

func TestCreateProductDefaults(t *testing.T) {
	svc, _, _ := newProductFixture()

	product, err := svc.Create(context.Background(), "h1", &CreateProductRequest{
		Name:          "Arroz",
		Category:      models.CategoryPantry,
		Unit:          models.UnitWeight,
		QuantityTotal: 5,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, 5.0, product.QuantityCurrent)
	assert.Equal(t, ThresholdFloor, product.LowStockThreshold)
	assert.Equal(t, models.StatusAvailable, product.Status)
	assert.False(t, product.AutoAddedToShopping)
}

func TestCreateProductCollectsAllViolations(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.Create(context.Background(), "h1", &CreateProductRequest{
		Name:              "",
		Category:          "junk",
		Unit:              "barrels",
		QuantityTotal:     0,
		LowStockThreshold: 3,
	})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	fields := make(map[string]bool)
	for _, v := range validationErr.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["category"])
	assert.True(t, fields["unit"])
	assert.True(t, fields["quantity_total"])
	assert.True(t, fields["low_stock_threshold"])
}

func TestCreateProductCurrentAboveTotal(t *testing.T) {
	svc, _, _ := newProductFixture()

	current := 12.0
	_, err := svc.Create(context.Background(), "h1", &CreateProductRequest{
		Name:            "Café",
		Category:        models.CategoryPantry,
		Unit:            models.UnitWeight,
		QuantityTotal:   10,
		QuantityCurrent: &current,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestConsumePartial(t *testing.T) {
	svc, history, _ := newProductFixture()
	product := createTestProduct(t, svc, "h1", 10, 10)

	updated, err := svc.Consume(context.Background(), "h1", product.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 8.0, updated.QuantityCurrent)
	assert.Equal(t, models.StatusAvailable, updated.Status)

	stats, err := history.GetHistory(context.Background(), "h1", product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stats.TotalConsumed)
}

// Consuming more than is left consumes the rest: quantity floors at zero and
// the log records what was actually consumed.
func TestConsumeFloorsAtZero(t *testing.T) {
	svc, history, _ := newProductFixture()
	product := createTestProduct(t, svc, "h1", 10, 3)

	updated, err := svc.Consume(context.Background(), "h1", product.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, 0.0, updated.QuantityCurrent)
	assert.Equal(t, models.StatusOut, updated.Status)

	stats, err := history.GetHistory(context.Background(), "h1", product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stats.TotalConsumed)
}

func TestConsumeRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newProductFixture()
	product := createTestProduct(t, svc, "h1", 10, 10)

	var validationErr *ValidationError
	_, err := svc.Consume(context.Background(), "h1", product.ID, 0)
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Consume(context.Background(), "h1", product.ID, -2)
	require.ErrorAs(t, err, &validationErr)
}

func TestOpenSemantics(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 10, 10)

	opened, err := svc.Open(ctx, "h1", product.ID)
	require.NoError(t, err)
	require.NotNil(t, opened.LastOpenedAt)

	// a cycle can only be opened once
	var stateErr *InvalidStateError
	_, err = svc.Open(ctx, "h1", product.ID)
	require.ErrorAs(t, err, &stateErr)
}

func TestOpenOutOfStockProduct(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 10, 1)

	_, err := svc.Consume(ctx, "h1", product.ID, 1)
	require.NoError(t, err)

	var stateErr *InvalidStateError
	_, err = svc.Open(ctx, "h1", product.ID)
	require.ErrorAs(t, err, &stateErr)
}

// Running an opened product dry closes its consumption cycle.
func TestConsumeToOutClosesCycle(t *testing.T) {
	svc, history, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 4, 4)

	_, err := svc.Open(ctx, "h1", product.ID)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, "h1", product.ID, 4)
	require.NoError(t, err)

	stats, err := history.GetHistory(ctx, "h1", product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCycles)
	assert.GreaterOrEqual(t, stats.AverageCycleDays, 1.0)
}

func TestRestoreResetsProduct(t *testing.T) {
	svc, history, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 6, 6)

	_, err := svc.Open(ctx, "h1", product.ID)
	require.NoError(t, err)
	_, err = svc.Consume(ctx, "h1", product.ID, 6)
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, "h1", product.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 6.0, restored.QuantityCurrent)
	assert.Equal(t, models.StatusAvailable, restored.Status)
	assert.Nil(t, restored.LastOpenedAt)
	assert.False(t, restored.AutoAddedToShopping)

	stats, err := history.GetHistory(ctx, "h1", product.ID, 0)
	require.NoError(t, err)
	// open + consume + cycle_complete + purchase
	assert.Equal(t, 4, stats.TotalLogs)
}

func TestRestoreRollsExpirationForward(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()

	expiration := time.Now().UTC().AddDate(0, 0, 5)
	current := 2.0
	product, err := svc.Create(ctx, "h1", &CreateProductRequest{
		Name:            "Yogur",
		Category:        models.CategoryDairy,
		Unit:            models.UnitCount,
		QuantityTotal:   8,
		QuantityCurrent: &current,
		ExpirationDate:  &expiration,
	})
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, "h1", product.ID, nil)
	require.NoError(t, err)

	require.NotNil(t, restored.ExpirationDate)
	expected := time.Now().UTC().AddDate(0, 0, 30)
	assert.WithinDuration(t, expected, *restored.ExpirationDate, time.Minute)
}

func TestUpdateValidatesMergedRecord(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 10, 8)

	// patch is fine alone but breaks against the stored current quantity
	smallTotal := 5.0
	_, err := svc.Update(ctx, "h1", product.ID, &UpdateProductRequest{
		QuantityTotal: &smallTotal,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestUpdateRecomputesStatus(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 10, 10)

	low := 1.0
	updated, err := svc.Update(ctx, "h1", product.ID, &UpdateProductRequest{
		QuantityCurrent: &low,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusLow, updated.Status)
}

func TestProductHouseholdScoping(t *testing.T) {
	svc, _, _ := newProductFixture()
	product := createTestProduct(t, svc, "h1", 10, 10)

	var notFound *NotFoundError
	_, err := svc.Get(context.Background(), "h2", product.ID)
	require.ErrorAs(t, err, &notFound)
}

// The primary write must succeed even when the history append fails: the log
// is a best-effort secondary effect.
func TestConsumeSurvivesHistoryFailure(t *testing.T) {
	svc, _, memStore := newProductFixture()
	ctx := context.Background()
	product := createTestProduct(t, svc, "h1", 10, 10)

	memStore.FailNext["insert"] = true
	updated, err := svc.Consume(ctx, "h1", product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.QuantityCurrent)

	assert.Equal(t, 0, memStore.Count(store.CollectionConsumptionLogs))
}
