// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ProductStatus string

const (
	StatusAvailable ProductStatus = "available"
	StatusLow       ProductStatus = "low"
	StatusOut       ProductStatus = "out"
)

func ValidStatus(s ProductStatus) bool {
	return s == StatusAvailable || s == StatusLow || s == StatusOut
}

type ProductCategory string

const (
	CategoryDairy        ProductCategory = "dairy"
	CategoryProduce      ProductCategory = "produce"
	CategoryMeat         ProductCategory = "meat"
	CategoryBakery       ProductCategory = "bakery"
	CategoryPantry       ProductCategory = "pantry"
	CategoryFrozen       ProductCategory = "frozen"
	CategoryBeverages    ProductCategory = "beverages"
	CategoryCleaning     ProductCategory = "cleaning"
	CategoryPersonalCare ProductCategory = "personal_care"
	CategoryOther        ProductCategory = "other"
)

func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryDairy, CategoryProduce, CategoryMeat, CategoryBakery, CategoryPantry,
		CategoryFrozen, CategoryBeverages, CategoryCleaning, CategoryPersonalCare, CategoryOther:
		return true
	}
	return false
}

type Unit string

const (
	UnitCount  Unit = "count"
	UnitWeight Unit = "weight"
	UnitVolume Unit = "volume"
)

func ValidUnit(u Unit) bool {
	return u == UnitCount || u == UnitWeight || u == UnitVolume
}

type ItemReason string

const (
	ReasonOut    ItemReason = "out"
	ReasonLow    ItemReason = "low"
	ReasonManual ItemReason = "manual"
)

type ItemPriority string

const (
	PriorityHigh   ItemPriority = "high"
	PriorityMedium ItemPriority = "medium"
	PriorityLow    ItemPriority = "low"
)

// PriorityForReason maps a reason to its list priority (out->high, low->medium, manual->low).
func PriorityForReason(r ItemReason) ItemPriority {
	switch r {
	case ReasonOut:
		return PriorityHigh
	case ReasonLow:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

type ActionType string

const (
	ActionConsume       ActionType = "consume"
	ActionOpen          ActionType = "open"
	ActionPurchase      ActionType = "purchase"
	ActionCycleComplete ActionType = "cycle_complete"
)

// Confidence keeps its Spanish wire values; the mobile clients match on these strings.
type Confidence string

const (
	ConfidenceAlta  Confidence = "alta"
	ConfidenceMedia Confidence = "media"
	ConfidenceBaja  Confidence = "baja"
)

func ValidConfidence(c Confidence) bool {
	return c == ConfidenceAlta || c == ConfidenceMedia || c == ConfidenceBaja
}
