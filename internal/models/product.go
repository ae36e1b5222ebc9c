// internal/models/product.go
package models

import (
	"time"
)

// Product is an inventory record scoped to a household. Status is derived from
// the two quantities and the threshold; the stored value is a display cache and
// is recomputed before any business decision.
type Product struct {
	ID                  string          `json:"id"`
	HouseholdID         string          `json:"household_id"`
	Name                string          `json:"name"`
	Category            ProductCategory `json:"category"`
	Unit                Unit            `json:"unit"`
	QuantityTotal       float64         `json:"quantity_total"`
	QuantityCurrent     float64         `json:"quantity_current"`
	LowStockThreshold   float64         `json:"low_stock_threshold"`
	Status              ProductStatus   `json:"status"`
	LastOpenedAt        *time.Time      `json:"last_opened_at"`
	AutoAddedToShopping bool            `json:"auto_added_to_shopping"`
	ExpirationDate      *time.Time      `json:"expiration_date"`
	PhotoURL            string          `json:"photo_url,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func ProductFromRecord(id string, data map[string]interface{}) *Product {
	return &Product{
		ID:                  id,
		HouseholdID:         AsString(data["householdId"]),
		Name:                AsString(data["name"]),
		Category:            ProductCategory(AsString(data["category"])),
		Unit:                Unit(AsString(data["unit"])),
		QuantityTotal:       AsFloat(data["quantityTotal"]),
		QuantityCurrent:     AsFloat(data["quantityCurrent"]),
		LowStockThreshold:   AsFloat(data["lowStockThreshold"]),
		Status:              ProductStatus(AsString(data["status"])),
		LastOpenedAt:        AsTimePtr(data["lastOpenedAt"]),
		AutoAddedToShopping: AsBool(data["autoAddedToShopping"]),
		ExpirationDate:      AsTimePtr(data["expirationDate"]),
		PhotoURL:            AsString(data["photoUrl"]),
		Notes:               AsString(data["notes"]),
		CreatedAt:           AsTime(data["createdAt"]),
		UpdatedAt:           AsTime(data["updatedAt"]),
	}
}

func (p *Product) ToRecord() map[string]interface{} {
	return map[string]interface{}{
		"householdId":         p.HouseholdID,
		"name":                p.Name,
		"category":            string(p.Category),
		"unit":                string(p.Unit),
		"quantityTotal":       p.QuantityTotal,
		"quantityCurrent":     p.QuantityCurrent,
		"lowStockThreshold":   p.LowStockThreshold,
		"status":              string(p.Status),
		"lastOpenedAt":        timeValue(p.LastOpenedAt),
		"autoAddedToShopping": p.AutoAddedToShopping,
		"expirationDate":      timeValue(p.ExpirationDate),
		"photoUrl":            p.PhotoURL,
		"notes":               p.Notes,
		"createdAt":           p.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":           p.UpdatedAt.Format(time.RFC3339Nano),
	}
}
