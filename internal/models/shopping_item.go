// internal/models/shopping_item.go
package models

import (
	"time"
)

// ShoppingListItem mirrors a product's stock status on the shared list.
// ProductID empty means the item was added by hand and is not linked to
// inventory. At most one unchecked item may exist per (household, product);
// the invariant is enforced by read-before-write in the sync service.
type ShoppingListItem struct {
	ID             string        `json:"id"`
	HouseholdID    string        `json:"household_id"`
	ProductID      string        `json:"product_id,omitempty"`
	ProductName    string        `json:"product_name"`
	Quantity       float64       `json:"quantity"`
	Unit           Unit          `json:"unit"`
	Reason         ItemReason    `json:"reason"`
	Priority       ItemPriority  `json:"priority"`
	Checked        bool          `json:"checked"`
	IsOutOfStock   bool          `json:"is_out_of_stock"`
	OriginalStatus ProductStatus `json:"original_status"`
	Notes          string        `json:"notes,omitempty"`
	AddedAt        time.Time     `json:"added_at"`
	PurchasedAt    *time.Time    `json:"purchased_at"`
}

func ShoppingListItemFromRecord(id string, data map[string]interface{}) *ShoppingListItem {
	return &ShoppingListItem{
		ID:             id,
		HouseholdID:    AsString(data["householdId"]),
		ProductID:      AsString(data["productId"]),
		ProductName:    AsString(data["productName"]),
		Quantity:       AsFloat(data["quantity"]),
		Unit:           Unit(AsString(data["unit"])),
		Reason:         ItemReason(AsString(data["reason"])),
		Priority:       ItemPriority(AsString(data["priority"])),
		Checked:        AsBool(data["checked"]),
		IsOutOfStock:   AsBool(data["isOutOfStock"]),
		OriginalStatus: ProductStatus(AsString(data["originalStatus"])),
		Notes:          AsString(data["notes"]),
		AddedAt:        AsTime(data["addedAt"]),
		PurchasedAt:    AsTimePtr(data["purchasedAt"]),
	}
}

func (i *ShoppingListItem) ToRecord() map[string]interface{} {
	return map[string]interface{}{
		"householdId":    i.HouseholdID,
		"productId":      i.ProductID,
		"productName":    i.ProductName,
		"quantity":       i.Quantity,
		"unit":           string(i.Unit),
		"reason":         string(i.Reason),
		"priority":       string(i.Priority),
		"checked":        i.Checked,
		"isOutOfStock":   i.IsOutOfStock,
		"originalStatus": string(i.OriginalStatus),
		"notes":          i.Notes,
		"addedAt":        i.AddedAt.Format(time.RFC3339Nano),
		"purchasedAt":    timeValue(i.PurchasedAt),
	}
}
