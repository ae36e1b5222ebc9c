// internal/services/prediction_service_test.go
package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarlab/despensa-backend/internal/ai"
	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
)

// stubCompleter scripts the collaborator: a fixed reply or error, an optional
// per-call delay, and a call counter.
type stubCompleter struct {
	reply string
	err   error
	delay time.Duration
	calls int64
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompleter) callCount() int64 {
	return atomic.LoadInt64(&s.calls)
}

func fastConfig() PredictionConfig {
	return PredictionConfig{
		Enabled:      true,
		CallTimeout:  time.Second,
		RequestDelay: time.Millisecond,
	}
}

func testProduct(status models.ProductStatus, current, total float64) *models.Product {
	return &models.Product{
		ID:              "p1",
		HouseholdID:     "h1",
		Name:            "Leche",
		Unit:            models.UnitVolume,
		QuantityCurrent: current,
		QuantityTotal:   total,
		Status:          status,
	}
}

func TestBaselineFallbacksByStatus(t *testing.T) {
	svc := NewPredictionService(store.NewMemoryStore(), nil, nil, PredictionConfig{})
	ctx := context.Background()
	noHistory := &HistoryStats{}

	out := svc.Predict(ctx, testProduct(models.StatusOut, 0, 10), noHistory)
	assert.Equal(t, 0, out.EstimatedDaysLeft)

	low := svc.Predict(ctx, testProduct(models.StatusLow, 1, 10), noHistory)
	assert.Equal(t, 3, low.EstimatedDaysLeft)

	available := svc.Predict(ctx, testProduct(models.StatusAvailable, 8, 10), noHistory)
	assert.Equal(t, 14, available.EstimatedDaysLeft)

	// no rate means the minimum sensible restock
	assert.Equal(t, 1.0, available.RecommendedPurchaseQuantity)
	assert.Equal(t, models.PredictionSourceDeterministic, available.Source)
}

func TestBaselineUsesConsumptionRate(t *testing.T) {
	svc := NewPredictionService(store.NewMemoryStore(), nil, nil, PredictionConfig{})

	stats := &HistoryStats{TotalLogs: 10, DailyRate: 0.75}
	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), stats)

	// ceil(5 / 0.75) = 7
	assert.Equal(t, 7, prediction.EstimatedDaysLeft)
	// ceil(0.75 * 14) = 11
	assert.Equal(t, 11.0, prediction.RecommendedPurchaseQuantity)
	assert.Equal(t, 0.75, prediction.DailyConsumptionRate)
}

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name  string
		stats HistoryStats
		want  models.Confidence
	}{
		{"no data", HistoryStats{}, models.ConfidenceBaja},
		{"below minimum", HistoryStats{TotalLogs: 2}, models.ConfidenceBaja},
		{"one cycle only", HistoryStats{TotalCycles: 1}, models.ConfidenceBaja},
		{"few logs with rate", HistoryStats{TotalLogs: 5, DailyRate: 0.5}, models.ConfidenceMedia},
		{"rich history", HistoryStats{TotalLogs: 20, TotalCycles: 3, DailyRate: 1.2}, models.ConfidenceAlta},
		{"many logs no cycles", HistoryStats{TotalLogs: 25, DailyRate: 0.3}, models.ConfidenceAlta},
		{"logs without rate", HistoryStats{TotalLogs: 12, TotalCycles: 1}, models.ConfidenceMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreConfidence(&tt.stats))
		})
	}
}

// Below the data minimum the model is not even consulted.
func TestPredictSkipsEnrichmentWithoutData(t *testing.T) {
	stub := &stubCompleter{reply: `{"predictedDaysLeft":2,"consumptionRate":1,"recommendedPurchase":2,"insights":[],"confidence":"alta","notes":""}`}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), &HistoryStats{TotalLogs: 2})

	assert.Equal(t, models.PredictionSourceDeterministic, prediction.Source)
	assert.Equal(t, int64(0), stub.callCount())
}

func TestEnrichmentApplied(t *testing.T) {
	stub := &stubCompleter{reply: `Here is my analysis:
{"predictedDaysLeft":4,"consumptionRate":1.3,"recommendedPurchase":6,"insights":["se consume más los fines de semana"],"confidence":"alta","notes":"compra pronto"}`}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	stats := &HistoryStats{TotalLogs: 10, TotalCycles: 2, DailyRate: 1.0}
	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), stats)

	assert.Equal(t, models.PredictionSourceAI, prediction.Source)
	assert.Equal(t, 4, prediction.EstimatedDaysLeft)
	assert.Equal(t, 1.3, prediction.DailyConsumptionRate)
	assert.Equal(t, 6.0, prediction.RecommendedPurchaseQuantity)
	assert.Equal(t, models.ConfidenceAlta, prediction.Confidence)
	assert.Len(t, prediction.Insights, 1)
	assert.Equal(t, "compra pronto", prediction.Notes)
}

func TestEnrichmentFailureKeepsBaseline(t *testing.T) {
	stub := &stubCompleter{err: errors.New("boom")}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	stats := &HistoryStats{TotalLogs: 10, DailyRate: 1.0}
	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), stats)

	assert.Equal(t, models.PredictionSourceDeterministic, prediction.Source)
	assert.Equal(t, 5, prediction.EstimatedDaysLeft)
	assert.Equal(t, int64(1), stub.callCount())
}

// A payload that fails validation is discarded whole, even if some fields
// were usable.
func TestInvalidPayloadDiscarded(t *testing.T) {
	stub := &stubCompleter{reply: `{"predictedDaysLeft":-2,"consumptionRate":1,"recommendedPurchase":3,"insights":[],"confidence":"alta","notes":""}`}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	stats := &HistoryStats{TotalLogs: 10, DailyRate: 1.0}
	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), stats)

	assert.Equal(t, models.PredictionSourceDeterministic, prediction.Source)
	assert.Equal(t, 5, prediction.EstimatedDaysLeft)
}

// A rate-limit error opens the cooldown: further products in the window get
// the baseline without another provider call.
func TestRateLimitCooldown(t *testing.T) {
	stub := &stubCompleter{err: &ai.ExternalServiceError{Provider: "openai", RateLimited: true, Err: errors.New("429")}}
	cfg := fastConfig()
	cfg.RateLimitCooldown = time.Minute
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, cfg)

	stats := &HistoryStats{TotalLogs: 10, DailyRate: 1.0}
	ctx := context.Background()

	svc.Predict(ctx, testProduct(models.StatusAvailable, 5, 10), stats)
	require.Equal(t, int64(1), stub.callCount())

	svc.Predict(ctx, testProduct(models.StatusAvailable, 5, 10), stats)
	assert.Equal(t, int64(1), stub.callCount())
}

func TestPredictDisabled(t *testing.T) {
	stub := &stubCompleter{reply: "{}"}
	cfg := fastConfig()
	cfg.Enabled = false
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, cfg)

	prediction := svc.Predict(context.Background(), testProduct(models.StatusAvailable, 5, 10), &HistoryStats{TotalLogs: 10, DailyRate: 1.0})

	assert.Equal(t, models.PredictionSourceDeterministic, prediction.Source)
	assert.Equal(t, int64(0), stub.callCount())
}

func seedAnalysisProducts(t *testing.T, products *ProductService) {
	t.Helper()
	ctx := context.Background()

	createTestProduct(t, products, "h1", 10, 10)

	low := createTestProduct(t, products, "h1", 10, 10)
	_, err := products.Consume(ctx, "h1", low.ID, 9)
	require.NoError(t, err)

	out := createTestProduct(t, products, "h1", 4, 4)
	_, err = products.Consume(ctx, "h1", out.ID, 4)
	require.NoError(t, err)
}

func TestAnalyzeHouseholdProducts(t *testing.T) {
	memStore := store.NewMemoryStore()
	history := NewConsumptionService(memStore)
	products := NewProductService(memStore, history)
	svc := NewPredictionService(memStore, history, nil, PredictionConfig{})

	seedAnalysisProducts(t, products)

	results, err := svc.AnalyzeHouseholdProducts(context.Background(), "h1", 0, time.Second)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// ascending urgency: fewest estimated days first
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].EstimatedDaysLeft, results[i].EstimatedDaysLeft)
	}
}

func TestAnalyzeHouseholdProductsLimit(t *testing.T) {
	memStore := store.NewMemoryStore()
	history := NewConsumptionService(memStore)
	products := NewProductService(memStore, history)
	svc := NewPredictionService(memStore, history, nil, PredictionConfig{})

	seedAnalysisProducts(t, products)

	results, err := svc.AnalyzeHouseholdProducts(context.Background(), "h1", 2, time.Second)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// the out-of-stock product makes the cut ahead of the untouched one
	statuses := map[models.ProductStatus]bool{}
	for _, r := range results {
		statuses[r.Status] = true
	}
	assert.True(t, statuses[models.StatusOut])
	assert.True(t, statuses[models.StatusLow])
}

// A slow provider and a tiny budget: the batch returns what it finished
// instead of hanging.
func TestAnalyzeHouseholdProductsTimeBudget(t *testing.T) {
	memStore := store.NewMemoryStore()
	history := NewConsumptionService(memStore)
	products := NewProductService(memStore, history)

	stub := &stubCompleter{
		reply: `{"predictedDaysLeft":4,"consumptionRate":1,"recommendedPurchase":2,"insights":[],"confidence":"media","notes":""}`,
		delay: 200 * time.Millisecond,
	}
	svc := NewPredictionService(memStore, history, stub, fastConfig())

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		p := createTestProduct(t, products, "h1", 10, 10)
		// enough history to qualify for enrichment
		for j := 0; j < 3; j++ {
			_, err := products.Consume(ctx, "h1", p.ID, 1)
			require.NoError(t, err)
		}
	}

	start := time.Now()
	results, err := svc.AnalyzeHouseholdProducts(ctx, "h1", 0, 300*time.Millisecond)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Less(t, len(results), 4)
	assert.NotEmpty(t, results)
}

func TestParseProductText(t *testing.T) {
	stub := &stubCompleter{reply: `{"name":"Leche entera","category":"dairy","unit":"volume","quantityTotal":2}`}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	guess, ok := svc.ParseProductText(context.Background(), "compré dos litros de leche")
	require.True(t, ok)
	assert.Equal(t, "Leche entera", guess.Name)
	assert.Equal(t, "dairy", guess.Category)
	assert.Equal(t, 2.0, guess.QuantityTotal)
}

func TestParseProductTextCoercesUnknowns(t *testing.T) {
	stub := &stubCompleter{reply: `{"name":"Algo raro","category":"gadgets","unit":"cajas","quantityTotal":1}`}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	guess, ok := svc.ParseProductText(context.Background(), "una caja de algo raro")
	require.True(t, ok)
	assert.Equal(t, string(models.CategoryOther), guess.Category)
	assert.Equal(t, string(models.UnitCount), guess.Unit)
}

func TestParseProductTextUnparsable(t *testing.T) {
	stub := &stubCompleter{reply: "no veo ningún producto aquí"}
	svc := NewPredictionService(store.NewMemoryStore(), nil, stub, fastConfig())

	_, ok := svc.ParseProductText(context.Background(), "qué día tan bonito")
	assert.False(t, ok)
}

func TestParseProductTextDisabled(t *testing.T) {
	svc := NewPredictionService(store.NewMemoryStore(), nil, nil, PredictionConfig{})

	_, ok := svc.ParseProductText(context.Background(), "compré pan")
	assert.False(t, ok)
	_, ok = svc.ParseProductText(context.Background(), "   ")
	assert.False(t, ok)
}
