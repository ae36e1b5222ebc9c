// internal/models/consumption_log.go
package models

import (
	"time"
)

// ConsumptionLogEntry is an append-only audit record. Entries are never
// updated or deleted by normal flow; aggregates are recomputed from full
// scans instead of being cached as mutable counters.
type ConsumptionLogEntry struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	HouseholdID  string     `json:"household_id"`
	ProductName  string     `json:"product_name"`
	Quantity     float64    `json:"quantity"`
	ActionType   ActionType `json:"action_type"`
	OpenedAt     *time.Time `json:"opened_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	DurationDays int        `json:"duration_days"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ConsumptionLogFromRecord(id string, data map[string]interface{}) *ConsumptionLogEntry {
	return &ConsumptionLogEntry{
		ID:           id,
		ProductID:    AsString(data["productId"]),
		HouseholdID:  AsString(data["householdId"]),
		ProductName:  AsString(data["productName"]),
		Quantity:     AsFloat(data["quantity"]),
		ActionType:   ActionType(AsString(data["actionType"])),
		OpenedAt:     AsTimePtr(data["openedAt"]),
		FinishedAt:   AsTimePtr(data["finishedAt"]),
		DurationDays: AsInt(data["durationDays"]),
		Notes:        AsString(data["notes"]),
		CreatedAt:    AsTime(data["createdAt"]),
	}
}

func (e *ConsumptionLogEntry) ToRecord() map[string]interface{} {
	return map[string]interface{}{
		"productId":    e.ProductID,
		"householdId":  e.HouseholdID,
		"productName":  e.ProductName,
		"quantity":     e.Quantity,
		"actionType":   string(e.ActionType),
		"openedAt":     timeValue(e.OpenedAt),
		"finishedAt":   timeValue(e.FinishedAt),
		"durationDays": e.DurationDays,
		"notes":        e.Notes,
		"createdAt":    e.CreatedAt.Format(time.RFC3339Nano),
	}
}
