// internal/services/shopping_list_service.go
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
)

// ProductRestorer is the slice of the product lifecycle the shopping list
// needs for purchase completion.
type ProductRestorer interface {
	Restore(ctx context.Context, householdID, id string, expirationDate *time.Time) (*models.Product, error)
}

// ShoppingListService keeps the list consistent with product status without
// transactions: read the open item before writing, update in place on
// escalation, and rely on the idempotent sweep to repair drift.
type ShoppingListService struct {
	store    store.RecordStore
	products ProductRestorer
}

type AddManualItemRequest struct {
	ProductName string      `json:"product_name" validate:"required,min=1,max=255"`
	Quantity    float64     `json:"quantity"`
	Unit        models.Unit `json:"unit"`
	Notes       string      `json:"notes,omitempty"`
}

func NewShoppingListService(recordStore store.RecordStore, products ProductRestorer) *ShoppingListService {
	return &ShoppingListService{store: recordStore, products: products}
}

// OnStatusTransition reacts to a committed product status change. It is a
// secondary effect: every failure here is logged and swallowed, the product
// write already happened and must not be unwound.
func (s *ShoppingListService) OnStatusTransition(ctx context.Context, product *models.Product, previous, next models.ProductStatus) {
	existing, err := s.openItemFor(ctx, product.HouseholdID, product.ID)
	if err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Warn("Shopping list sync: open item lookup failed")
		return
	}

	if existing == nil {
		if next != models.StatusLow && next != models.StatusOut {
			return
		}
		if err := s.insertForStatus(ctx, product, next); err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Warn("Shopping list sync: insert failed")
		}
		return
	}

	// escalation is the one transition that mutates an existing open item;
	// everything else leaves it untouched (no auto-demotion, no removal)
	if previous == models.StatusLow && next == models.StatusOut && existing.Reason != models.ReasonOut {
		if err := s.escalate(ctx, existing, product); err != nil {
			logrus.WithError(err).WithField("item_id", existing.ID).Warn("Shopping list sync: escalation failed")
		}
	}
}

// SyncProductWithShoppingList re-derives the item for one product from its
// live computed status. Safe to run any number of times.
func (s *ShoppingListService) SyncProductWithShoppingList(ctx context.Context, householdID, productID string) error {
	rec, err := s.store.GetByID(ctx, store.CollectionProducts, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// product is gone, clear any orphaned open items
			return s.RemoveProductItems(ctx, householdID, productID)
		}
		return err
	}

	product := coerceProduct(rec.ID, rec.Data)
	if product.HouseholdID != householdID {
		return &NotFoundError{Resource: "product", ID: productID}
	}

	existing, err := s.openItemFor(ctx, householdID, productID)
	if err != nil {
		return err
	}

	if existing == nil {
		if product.Status == models.StatusLow || product.Status == models.StatusOut {
			return s.insertForStatus(ctx, product, product.Status)
		}
		return nil
	}

	if existing.OriginalStatus == models.StatusLow && product.Status == models.StatusOut && existing.Reason != models.ReasonOut {
		return s.escalate(ctx, existing, product)
	}
	return nil
}

// SyncAllProductsWithShoppingList is the reconciliation sweep. Errors on
// individual products are counted, logged, and do not stop the sweep.
func (s *ShoppingListService) SyncAllProductsWithShoppingList(ctx context.Context, householdID string) (synced, failed int, err error) {
	records, err := s.store.Query(ctx, store.CollectionProducts, []store.Filter{
		{Field: "householdId", Value: householdID},
	}, store.Options{})
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range records {
		if err := s.SyncProductWithShoppingList(ctx, householdID, rec.ID); err != nil {
			failed++
			logrus.WithError(err).WithField("product_id", rec.ID).Warn("Reconciliation sweep: product sync failed")
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (s *ShoppingListService) List(ctx context.Context, householdID string, includeChecked bool) ([]models.ShoppingListItem, error) {
	records, err := s.store.Query(ctx, store.CollectionShoppingList, []store.Filter{
		{Field: "householdId", Value: householdID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	items := make([]models.ShoppingListItem, 0, len(records))
	for _, rec := range records {
		item := models.ShoppingListItemFromRecord(rec.ID, rec.Data)
		if !includeChecked && item.Checked {
			continue
		}
		items = append(items, *item)
	}

	// urgent first, then newest
	rank := map[models.ItemPriority]int{models.PriorityHigh: 0, models.PriorityMedium: 1, models.PriorityLow: 2}
	sort.SliceStable(items, func(i, j int) bool {
		if rank[items[i].Priority] != rank[items[j].Priority] {
			return rank[items[i].Priority] < rank[items[j].Priority]
		}
		return items[i].AddedAt.After(items[j].AddedAt)
	})
	return items, nil
}

func (s *ShoppingListService) AddManualItem(ctx context.Context, householdID string, req *AddManualItemRequest) (*models.ShoppingListItem, error) {
	violations := &ValidationError{}
	if req.ProductName == "" {
		violations.Add("product_name", "must not be empty")
	}
	if req.Quantity < 0 {
		violations.Add("quantity", "must not be negative")
	}
	if req.Unit != "" && !models.ValidUnit(req.Unit) {
		violations.Add("unit", "unknown unit")
	}
	if violations.HasViolations() {
		return nil, violations
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	unit := req.Unit
	if unit == "" {
		unit = models.UnitCount
	}

	item := &models.ShoppingListItem{
		HouseholdID: householdID,
		ProductName: req.ProductName,
		Quantity:    quantity,
		Unit:        unit,
		Reason:      models.ReasonManual,
		Priority:    models.PriorityForReason(models.ReasonManual),
		Notes:       req.Notes,
		AddedAt:     time.Now().UTC(),
	}

	id, err := s.store.Insert(ctx, store.CollectionShoppingList, item.ToRecord())
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

// MarkPurchased checks the item off and, when it is linked to a product,
// triggers the repurchase restore. The restore is a cross-collection secondary
// write: its failure is logged, the purchase itself stands.
func (s *ShoppingListService) MarkPurchased(ctx context.Context, householdID, itemID string) (*models.ShoppingListItem, error) {
	item, err := s.loadItem(ctx, householdID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Checked {
		return nil, &InvalidStateError{Reason: "item is already purchased"}
	}

	now := time.Now().UTC()
	item.Checked = true
	item.PurchasedAt = &now

	err = s.store.Update(ctx, store.CollectionShoppingList, itemID, map[string]interface{}{
		"checked":     true,
		"purchasedAt": now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	if item.ProductID != "" && s.products != nil {
		if _, err := s.products.Restore(ctx, householdID, item.ProductID, nil); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"item_id":    itemID,
				"product_id": item.ProductID,
			}).Warn("Purchase completed but product restore failed")
		}
	}
	return item, nil
}

func (s *ShoppingListService) DeleteItem(ctx context.Context, householdID, itemID string) error {
	if _, err := s.loadItem(ctx, householdID, itemID); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.CollectionShoppingList, itemID)
}

// RemoveProductItems deletes every open item linked to a product; used by the
// product delete cascade and by the sweep when it finds orphans.
func (s *ShoppingListService) RemoveProductItems(ctx context.Context, householdID, productID string) error {
	records, err := s.store.Query(ctx, store.CollectionShoppingList, []store.Filter{
		{Field: "householdId", Value: householdID},
		{Field: "productId", Value: productID},
	}, store.Options{})
	if err != nil {
		return err
	}

	var lastErr error
	for _, rec := range records {
		item := models.ShoppingListItemFromRecord(rec.ID, rec.Data)
		if item.Checked {
			continue
		}
		if err := s.store.Delete(ctx, store.CollectionShoppingList, rec.ID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// openItemFor returns the oldest unchecked item for a product, or nil. The
// store has no unique constraint, so read-before-write is the only guard.
func (s *ShoppingListService) openItemFor(ctx context.Context, householdID, productID string) (*models.ShoppingListItem, error) {
	records, err := s.store.Query(ctx, store.CollectionShoppingList, []store.Filter{
		{Field: "householdId", Value: householdID},
		{Field: "productId", Value: productID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	var open []models.ShoppingListItem
	for _, rec := range records {
		item := models.ShoppingListItemFromRecord(rec.ID, rec.Data)
		if !item.Checked {
			open = append(open, *item)
		}
	}
	if len(open) == 0 {
		return nil, nil
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].AddedAt.Before(open[j].AddedAt)
	})
	return &open[0], nil
}

func (s *ShoppingListService) insertForStatus(ctx context.Context, product *models.Product, status models.ProductStatus) error {
	reason := models.ReasonLow
	quantity := math.Ceil(product.QuantityTotal - product.QuantityCurrent)
	if status == models.StatusOut {
		reason = models.ReasonOut
		quantity = product.QuantityTotal
	}
	if quantity <= 0 {
		quantity = 1
	}

	item := &models.ShoppingListItem{
		HouseholdID:    product.HouseholdID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       quantity,
		Unit:           product.Unit,
		Reason:         reason,
		Priority:       models.PriorityForReason(reason),
		IsOutOfStock:   reason == models.ReasonOut,
		OriginalStatus: status,
		AddedAt:        time.Now().UTC(),
	}

	if _, err := s.store.Insert(ctx, store.CollectionShoppingList, item.ToRecord()); err != nil {
		return err
	}

	// flag the product so repeated transitions cannot double-insert even if
	// the open-item query races; failure here is repaired by the sweep
	err := s.store.Update(ctx, store.CollectionProducts, product.ID, map[string]interface{}{
		"autoAddedToShopping": true,
	})
	if err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Warn("Failed to flag product as auto-added")
	}
	return nil
}

func (s *ShoppingListService) escalate(ctx context.Context, item *models.ShoppingListItem, product *models.Product) error {
	notes := item.Notes
	if notes != "" {
		notes += " · "
	}
	notes += "se agotó por completo"

	return s.store.Update(ctx, store.CollectionShoppingList, item.ID, map[string]interface{}{
		"reason":         string(models.ReasonOut),
		"priority":       string(models.PriorityForReason(models.ReasonOut)),
		"isOutOfStock":   true,
		"originalStatus": string(models.StatusOut),
		"quantity":       product.QuantityTotal,
		"notes":          notes,
	})
}

func (s *ShoppingListService) loadItem(ctx context.Context, householdID, itemID string) (*models.ShoppingListItem, error) {
	rec, err := s.store.GetByID(ctx, store.CollectionShoppingList, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shopping list item", ID: itemID}
		}
		return nil, err
	}

	item := models.ShoppingListItemFromRecord(rec.ID, rec.Data)
	if item.HouseholdID != householdID {
		return nil, &NotFoundError{Resource: "shopping list item", ID: itemID}
	}
	return item, nil
}
