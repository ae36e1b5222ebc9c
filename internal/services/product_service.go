// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

// ShoppingListSyncer receives status-transition events after the primary
// product write has committed. Implementations must be idempotent; the
// product service never checks their outcome.
type ShoppingListSyncer interface {
	OnStatusTransition(ctx context.Context, product *models.Product, previous, next models.ProductStatus)
	RemoveProductItems(ctx context.Context, householdID, productID string) error
}

// ProductService owns the product lifecycle. Every mutation that touches a
// quantity or the threshold recomputes status through the classifier; the
// stored status is never trusted as input.
type ProductService struct {
	store   store.RecordStore
	history *ConsumptionService
	syncer  ShoppingListSyncer
}

type CreateProductRequest struct {
	Name              string                 `json:"name" validate:"required,min=1,max=255"`
	Category          models.ProductCategory `json:"category" validate:"required"`
	Unit              models.Unit            `json:"unit" validate:"required"`
	QuantityTotal     float64                `json:"quantity_total" validate:"required"`
	QuantityCurrent   *float64               `json:"quantity_current,omitempty"`
	LowStockThreshold float64                `json:"low_stock_threshold,omitempty"`
	ExpirationDate    *time.Time             `json:"expiration_date,omitempty"`
	PhotoURL          string                 `json:"photo_url,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
}

type UpdateProductRequest struct {
	Name              *string                 `json:"name,omitempty"`
	Category          *models.ProductCategory `json:"category,omitempty"`
	Unit              *models.Unit            `json:"unit,omitempty"`
	QuantityTotal     *float64                `json:"quantity_total,omitempty"`
	QuantityCurrent   *float64                `json:"quantity_current,omitempty"`
	LowStockThreshold *float64                `json:"low_stock_threshold,omitempty"`
	ExpirationDate    *time.Time              `json:"expiration_date,omitempty"`
	PhotoURL          *string                 `json:"photo_url,omitempty"`
	Notes             *string                 `json:"notes,omitempty"`
}

func NewProductService(recordStore store.RecordStore, history *ConsumptionService) *ProductService {
	return &ProductService{store: recordStore, history: history}
}

// SetSyncer wires the shopping-list reaction after construction; the sync
// service needs the product service for purchase-triggered restores, so the
// dependency runs both ways and one side is set late.
func (s *ProductService) SetSyncer(syncer ShoppingListSyncer) {
	s.syncer = syncer
}

func (s *ProductService) Create(ctx context.Context, householdID string, req *CreateProductRequest) (*models.Product, error) {
	violations := &ValidationError{}
	for _, v := range utils.GetValidationErrors(utils.ValidateStruct(req)) {
		violations.Add(v.Field, v.Message)
	}
	if req.Category != "" && !models.ValidCategory(req.Category) {
		violations.Add("category", "unknown category")
	}
	if req.Unit != "" && !models.ValidUnit(req.Unit) {
		violations.Add("unit", "unknown unit")
	}
	if req.QuantityTotal <= 0 {
		violations.Add("quantity_total", "must be greater than 0")
	}

	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = ThresholdFloor
	}
	if threshold < 0.1 || threshold > 1.0 {
		violations.Add("low_stock_threshold", "must be between 0.1 and 1.0")
	}

	current := req.QuantityTotal
	if req.QuantityCurrent != nil {
		current = *req.QuantityCurrent
		if current < 0 || current > req.QuantityTotal {
			violations.Add("quantity_current", "must be between 0 and quantity_total")
		}
	}

	if violations.HasViolations() {
		return nil, violations
	}

	now := time.Now().UTC()
	threshold = ClampThreshold(threshold)
	product := &models.Product{
		HouseholdID:         householdID,
		Name:                req.Name,
		Category:            req.Category,
		Unit:                req.Unit,
		QuantityTotal:       req.QuantityTotal,
		QuantityCurrent:     current,
		LowStockThreshold:   threshold,
		Status:              ClassifyStatus(current, req.QuantityTotal, threshold),
		AutoAddedToShopping: false,
		ExpirationDate:      req.ExpirationDate,
		PhotoURL:            req.PhotoURL,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	id, err := s.store.Insert(ctx, store.CollectionProducts, product.ToRecord())
	if err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, householdID, id string) (*models.Product, error) {
	return s.load(ctx, householdID, id)
}

func (s *ProductService) List(ctx context.Context, householdID string) ([]models.Product, error) {
	records, err := s.store.Query(ctx, store.CollectionProducts, []store.Filter{
		{Field: "householdId", Value: householdID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, *coerceProduct(rec.ID, rec.Data))
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, householdID, id string, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.load(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	previous := product.Status

	merged := *product
	quantitiesTouched := false
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Category != nil {
		merged.Category = *req.Category
	}
	if req.Unit != nil {
		merged.Unit = *req.Unit
	}
	if req.QuantityTotal != nil {
		merged.QuantityTotal = *req.QuantityTotal
		quantitiesTouched = true
	}
	if req.QuantityCurrent != nil {
		merged.QuantityCurrent = *req.QuantityCurrent
		quantitiesTouched = true
	}
	if req.LowStockThreshold != nil {
		merged.LowStockThreshold = *req.LowStockThreshold
		quantitiesTouched = true
	}
	if req.ExpirationDate != nil {
		merged.ExpirationDate = req.ExpirationDate
	}
	if req.PhotoURL != nil {
		merged.PhotoURL = *req.PhotoURL
	}
	if req.Notes != nil {
		merged.Notes = *req.Notes
	}

	// quantity updates are validated against the merged record, not the patch
	violations := &ValidationError{}
	if merged.Name == "" {
		violations.Add("name", "must not be empty")
	}
	if !models.ValidCategory(merged.Category) {
		violations.Add("category", "unknown category")
	}
	if !models.ValidUnit(merged.Unit) {
		violations.Add("unit", "unknown unit")
	}
	if merged.QuantityTotal <= 0 {
		violations.Add("quantity_total", "must be greater than 0")
	}
	if merged.QuantityCurrent < 0 || merged.QuantityCurrent > merged.QuantityTotal {
		violations.Add("quantity_current", "must be between 0 and quantity_total")
	}
	if req.LowStockThreshold != nil && (*req.LowStockThreshold < 0.1 || *req.LowStockThreshold > 1.0) {
		violations.Add("low_stock_threshold", "must be between 0.1 and 1.0")
	}
	if violations.HasViolations() {
		return nil, violations
	}

	merged.LowStockThreshold = ClampThreshold(merged.LowStockThreshold)
	if quantitiesTouched {
		merged.Status = ClassifyStatus(merged.QuantityCurrent, merged.QuantityTotal, merged.LowStockThreshold)
	}
	merged.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, store.CollectionProducts, id, merged.ToRecord()); err != nil {
		return nil, err
	}

	if merged.Status != previous {
		s.emitTransition(ctx, &merged, previous, merged.Status)
	}
	return &merged, nil
}

// Consume decreases the current quantity, flooring at zero: consuming more
// than is left means consuming the rest, not an error.
func (s *ProductService) Consume(ctx context.Context, householdID, id string, amount float64) (*models.Product, error) {
	if amount <= 0 {
		return nil, &ValidationError{Violations: []FieldViolation{{Field: "amount", Message: "must be greater than 0"}}}
	}

	product, err := s.load(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	previous := product.Status

	consumed := math.Min(amount, product.QuantityCurrent)
	product.QuantityCurrent = math.Max(0, product.QuantityCurrent-amount)
	product.Status = ClassifyStatus(product.QuantityCurrent, product.QuantityTotal, product.LowStockThreshold)
	product.UpdatedAt = time.Now().UTC()

	err = s.store.Update(ctx, store.CollectionProducts, id, map[string]interface{}{
		"quantityCurrent": product.QuantityCurrent,
		"status":          string(product.Status),
		"updatedAt":       product.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	if product.Status != previous {
		s.emitTransition(ctx, product, previous, product.Status)
	}

	now := time.Now().UTC()
	s.history.RecordBestEffort(ctx, &models.ConsumptionLogEntry{
		ProductID:   product.ID,
		HouseholdID: product.HouseholdID,
		ProductName: product.Name,
		Quantity:    consumed,
		ActionType:  models.ActionConsume,
		CreatedAt:   now,
	})

	// the cycle closes when an opened product runs dry
	if product.Status == models.StatusOut && product.LastOpenedAt != nil {
		s.history.RecordBestEffort(ctx, &models.ConsumptionLogEntry{
			ProductID:    product.ID,
			HouseholdID:  product.HouseholdID,
			ProductName:  product.Name,
			ActionType:   models.ActionCycleComplete,
			OpenedAt:     product.LastOpenedAt,
			FinishedAt:   &now,
			DurationDays: daysBetween(*product.LastOpenedAt, now),
			CreatedAt:    now,
		})
	}

	return product, nil
}

// Open marks the start of a consumption cycle. A product can only be opened
// once per cycle; restore resets the marker.
func (s *ProductService) Open(ctx context.Context, householdID, id string) (*models.Product, error) {
	product, err := s.load(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	if product.Status == models.StatusOut {
		return nil, &InvalidStateError{Reason: "product is out of stock"}
	}
	if product.LastOpenedAt != nil {
		return nil, &InvalidStateError{Reason: "product is already opened"}
	}

	now := time.Now().UTC()
	product.LastOpenedAt = &now
	product.UpdatedAt = now

	err = s.store.Update(ctx, store.CollectionProducts, id, map[string]interface{}{
		"lastOpenedAt": now.Format(time.RFC3339Nano),
		"updatedAt":    now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	s.history.RecordBestEffort(ctx, &models.ConsumptionLogEntry{
		ProductID:   product.ID,
		HouseholdID: product.HouseholdID,
		ProductName: product.Name,
		ActionType:  models.ActionOpen,
		OpenedAt:    &now,
		CreatedAt:   now,
	})
	return product, nil
}

// Restore is the repurchase flow: full quantity, fresh cycle, shopping flag
// cleared. Works from any prior state, including out.
func (s *ProductService) Restore(ctx context.Context, householdID, id string, expirationDate *time.Time) (*models.Product, error) {
	product, err := s.load(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	previous := product.Status
	openedAt := product.LastOpenedAt
	now := time.Now().UTC()

	switch {
	case expirationDate != nil:
		product.ExpirationDate = expirationDate
	case product.ExpirationDate != nil:
		// the product tracks expiration but none was supplied, roll forward
		rolled := now.AddDate(0, 0, 30)
		product.ExpirationDate = &rolled
	}

	product.QuantityCurrent = product.QuantityTotal
	product.Status = models.StatusAvailable
	product.LastOpenedAt = nil
	product.AutoAddedToShopping = false
	product.UpdatedAt = now

	if err := s.store.Update(ctx, store.CollectionProducts, id, product.ToRecord()); err != nil {
		return nil, err
	}

	if product.Status != previous {
		s.emitTransition(ctx, product, previous, product.Status)
	}

	entry := &models.ConsumptionLogEntry{
		ProductID:   product.ID,
		HouseholdID: product.HouseholdID,
		ProductName: product.Name,
		Quantity:    product.QuantityTotal,
		ActionType:  models.ActionPurchase,
		OpenedAt:    openedAt,
		FinishedAt:  &now,
		CreatedAt:   now,
	}
	if openedAt != nil {
		entry.DurationDays = daysBetween(*openedAt, now)
	}
	s.history.RecordBestEffort(ctx, entry)

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, householdID, id string) error {
	product, err := s.load(ctx, householdID, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, store.CollectionProducts, id); err != nil {
		return err
	}

	// cascade is best-effort, an orphaned list item is repaired by the sweep
	if s.syncer != nil {
		if err := s.syncer.RemoveProductItems(ctx, householdID, product.ID); err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("Failed to cascade shopping list delete")
		}
	}
	return nil
}

func (s *ProductService) emitTransition(ctx context.Context, product *models.Product, previous, next models.ProductStatus) {
	if s.syncer == nil {
		return
	}
	s.syncer.OnStatusTransition(ctx, product, previous, next)
}

func (s *ProductService) load(ctx context.Context, householdID, id string) (*models.Product, error) {
	rec, err := s.store.GetByID(ctx, store.CollectionProducts, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, err
	}

	product := coerceProduct(rec.ID, rec.Data)
	if product.HouseholdID != householdID {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	return product, nil
}

// coerceProduct applies the parse/validate boundary and recomputes status;
// the stored value may have been staled by a concurrent writer.
func coerceProduct(id string, data map[string]interface{}) *models.Product {
	product := models.ProductFromRecord(id, data)
	product.LowStockThreshold = ClampThreshold(product.LowStockThreshold)
	product.Status = ClassifyStatus(product.QuantityCurrent, product.QuantityTotal, product.LowStockThreshold)
	return product
}

func daysBetween(from, to time.Time) int {
	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}
