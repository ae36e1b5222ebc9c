// internal/services/prediction_service.go
package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hogarlab/despensa-backend/internal/ai"
	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
)

// Fallback day estimates when no usable consumption rate exists. Fixed
// heuristics, not derived.
const (
	fallbackDaysOut       = 0
	fallbackDaysLow       = 3
	fallbackDaysAvailable = 14
	restockHorizonDays    = 14
)

type PredictionConfig struct {
	Enabled           bool
	Model             string
	Temperature       float32
	MaxTokens         int
	CallTimeout       time.Duration
	RequestDelay      time.Duration
	RateLimitCooldown time.Duration
}

// PredictionService produces consumption forecasts. The deterministic
// baseline always succeeds; the AI enrichment is a best-effort refinement
// that is discarded whole on any failure or schema mismatch.
type PredictionService struct {
	store     store.RecordStore
	history   *ConsumptionService
	completer ai.Completer
	cfg       PredictionConfig
	limiter   *rate.Limiter

	mu               sync.Mutex
	rateLimitedUntil time.Time
}

func NewPredictionService(recordStore store.RecordStore, history *ConsumptionService, completer ai.Completer, cfg PredictionConfig) *PredictionService {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	if cfg.RateLimitCooldown <= 0 {
		cfg.RateLimitCooldown = 5 * time.Minute
	}
	return &PredictionService{
		store:     recordStore,
		history:   history,
		completer: completer,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
	}
}

// Predict never fails: whatever happens to the enrichment, the caller gets a
// fully populated deterministic forecast.
func (s *PredictionService) Predict(ctx context.Context, product *models.Product, stats *HistoryStats) *models.Prediction {
	prediction := s.baseline(product, stats)

	if s.completer == nil || !s.cfg.Enabled {
		return prediction
	}
	if stats.TotalLogs < 3 && stats.TotalCycles < 1 {
		// not enough data for the model to say anything the baseline cannot
		return prediction
	}
	if s.coolingDown() {
		return prediction
	}

	s.enrich(ctx, product, stats, prediction)
	return prediction
}

// PredictProduct loads one product and its history, then forecasts it.
func (s *PredictionService) PredictProduct(ctx context.Context, householdID, productID string, windowMonths int) (*models.Prediction, error) {
	rec, err := s.store.GetByID(ctx, store.CollectionProducts, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, err
	}

	product := coerceProduct(rec.ID, rec.Data)
	if product.HouseholdID != householdID {
		return nil, &NotFoundError{Resource: "product", ID: productID}
	}

	stats, err := s.history.GetHistory(ctx, householdID, productID, windowMonths)
	if err != nil {
		return nil, err
	}
	return s.Predict(ctx, product, stats), nil
}

// AnalyzeHouseholdProducts forecasts a household's products inside a
// wall-clock budget: low/out products first, then products with history.
// Past the budget no further product is analyzed; partial results come back
// sorted by urgency.
func (s *PredictionService) AnalyzeHouseholdProducts(ctx context.Context, householdID string, limit int, timeBudget time.Duration) ([]models.Prediction, error) {
	records, err := s.store.Query(ctx, store.CollectionProducts, []store.Filter{
		{Field: "householdId", Value: householdID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	type candidate struct {
		product *models.Product
		stats   *HistoryStats
	}
	candidates := make([]candidate, 0, len(records))
	for _, rec := range records {
		product := coerceProduct(rec.ID, rec.Data)
		stats, err := s.history.GetHistory(ctx, householdID, product.ID, 0)
		if err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Warn("Batch analysis: history scan failed")
			stats = &HistoryStats{}
		}
		candidates = append(candidates, candidate{product: product, stats: stats})
	}

	statusRank := map[models.ProductStatus]int{models.StatusOut: 0, models.StatusLow: 1, models.StatusAvailable: 2}
	sort.SliceStable(candidates, func(i, j int) bool {
		if statusRank[candidates[i].product.Status] != statusRank[candidates[j].product.Status] {
			return statusRank[candidates[i].product.Status] < statusRank[candidates[j].product.Status]
		}
		return candidates[i].stats.TotalLogs > candidates[j].stats.TotalLogs
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if timeBudget <= 0 {
		timeBudget = 30 * time.Second
	}
	deadline := time.Now().Add(timeBudget)

	results := make([]models.Prediction, 0, len(candidates))
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		if !time.Now().Before(deadline) {
			logrus.WithField("remaining", len(candidates)-len(results)).Info("Batch analysis: time budget exhausted")
			break
		}

		budgetCtx, cancel := context.WithDeadline(ctx, deadline)
		prediction := s.Predict(budgetCtx, c.product, c.stats)
		cancel()
		results = append(results, *prediction)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EstimatedDaysLeft < results[j].EstimatedDaysLeft
	})
	return results, nil
}

func (s *PredictionService) baseline(product *models.Product, stats *HistoryStats) *models.Prediction {
	prediction := &models.Prediction{
		ProductID:            product.ID,
		ProductName:          product.Name,
		Status:               product.Status,
		DailyConsumptionRate: stats.DailyRate,
		Insights:             []string{},
		Source:               models.PredictionSourceDeterministic,
		GeneratedAt:          time.Now().UTC(),
	}

	if stats.DailyRate > 0 && product.QuantityCurrent > 0 {
		prediction.EstimatedDaysLeft = int(math.Ceil(product.QuantityCurrent / stats.DailyRate))
	} else {
		switch product.Status {
		case models.StatusOut:
			prediction.EstimatedDaysLeft = fallbackDaysOut
		case models.StatusLow:
			prediction.EstimatedDaysLeft = fallbackDaysLow
		default:
			prediction.EstimatedDaysLeft = fallbackDaysAvailable
		}
	}

	if stats.DailyRate > 0 {
		prediction.RecommendedPurchaseQuantity = math.Ceil(stats.DailyRate * restockHorizonDays)
	} else {
		prediction.RecommendedPurchaseQuantity = 1
	}

	prediction.Confidence = scoreConfidence(stats)
	return prediction
}

// scoreConfidence is a weighted sum over data volume: more logs and completed
// cycles mean the rate is trustworthy.
func scoreConfidence(stats *HistoryStats) models.Confidence {
	if stats.TotalLogs < 3 && stats.TotalCycles < 1 {
		return models.ConfidenceBaja
	}

	score := 0
	switch {
	case stats.TotalLogs >= 20:
		score += 40
	case stats.TotalLogs >= 10:
		score += 30
	case stats.TotalLogs >= 5:
		score += 20
	default:
		score += 10
	}
	switch {
	case stats.TotalCycles >= 3:
		score += 30
	case stats.TotalCycles >= 1:
		score += 15
	}
	if stats.DailyRate > 0 {
		score += 30
	}

	switch {
	case score >= 70:
		return models.ConfidenceAlta
	case score >= 40:
		return models.ConfidenceMedia
	default:
		return models.ConfidenceBaja
	}
}

// enrich asks the completer to refine the baseline and applies the response
// only if the whole payload validates. Any failure leaves the baseline
// untouched; nothing here is ever surfaced to the caller.
func (s *PredictionService) enrich(ctx context.Context, product *models.Product, stats *HistoryStats, prediction *models.Prediction) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	prompt := ai.BuildPredictionPrompt(ai.PredictionInput{
		ProductName:         product.Name,
		Status:              string(product.Status),
		Unit:                string(product.Unit),
		QuantityCurrent:     product.QuantityCurrent,
		QuantityTotal:       product.QuantityTotal,
		DailyRate:           stats.DailyRate,
		TotalLogs:           stats.TotalLogs,
		TotalCycles:         stats.TotalCycles,
		AverageCycleDays:    stats.AverageCycleDays,
		BaselineDaysLeft:    prediction.EstimatedDaysLeft,
		BaselineRecommended: prediction.RecommendedPurchaseQuantity,
	})

	raw, err := s.completer.Complete(callCtx, prompt, ai.Options{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.noteFailure(product.ID, err)
		return
	}

	payload, err := ai.DecodePrediction(raw)
	if err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Debug("Prediction enrichment discarded")
		return
	}

	prediction.EstimatedDaysLeft = payload.PredictedDaysLeft
	prediction.DailyConsumptionRate = payload.ConsumptionRate
	prediction.RecommendedPurchaseQuantity = payload.RecommendedPurchase
	prediction.Confidence = models.Confidence(payload.Confidence)
	prediction.Insights = payload.Insights
	prediction.Notes = payload.Notes
	prediction.Source = models.PredictionSourceAI
}

// ParseProductText turns free text ("compré dos litros de leche") into a
// create-product draft. Not parsing is a normal outcome, not an error: the
// caller falls back to the manual form.
func (s *PredictionService) ParseProductText(ctx context.Context, text string) (*ai.ProductGuess, bool) {
	if s.completer == nil || !s.cfg.Enabled || strings.TrimSpace(text) == "" {
		return nil, false
	}
	if s.coolingDown() {
		return nil, false
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	raw, err := s.completer.Complete(callCtx, ai.BuildProductParsePrompt(text), ai.Options{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.noteFailure("", err)
		return nil, false
	}

	guess, err := ai.DecodeProductGuess(raw)
	if err != nil {
		logrus.WithError(err).Debug("Product parse discarded")
		return nil, false
	}

	if !models.ValidCategory(models.ProductCategory(guess.Category)) {
		guess.Category = string(models.CategoryOther)
	}
	if !models.ValidUnit(models.Unit(guess.Unit)) {
		guess.Unit = string(models.UnitCount)
	}
	return guess, true
}

func (s *PredictionService) noteFailure(productID string, err error) {
	if extErr, ok := err.(*ai.ExternalServiceError); ok && extErr.RateLimited {
		s.mu.Lock()
		s.rateLimitedUntil = time.Now().Add(s.cfg.RateLimitCooldown)
		s.mu.Unlock()
	}
	logrus.WithError(err).WithField("product_id", productID).Debug("Prediction enrichment call failed")
}

func (s *PredictionService) coolingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Before(s.rateLimitedUntil)
}
