// internal/services/consumption_service.go
package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/store"
)

// ConsumptionService owns the append-only consumption log and the aggregates
// derived from it. Appends accompanying a primary mutation are best-effort:
// a failed append is logged and swallowed, it never reverses the mutation.
type ConsumptionService struct {
	store store.RecordStore
}

// HistoryStats are recomputed from a full scan on every call. The store gives
// no server-side aggregation, and a mutable counter would drift.
type HistoryStats struct {
	TotalLogs        int                          `json:"total_logs"`
	TotalConsumed    float64                      `json:"total_consumed"`
	DaysSinceFirst   int                          `json:"days_since_first"`
	DailyRate        float64                      `json:"daily_rate"`
	TotalCycles      int                          `json:"total_cycles"`
	AverageCycleDays float64                      `json:"average_cycle_days"`
	Entries          []models.ConsumptionLogEntry `json:"entries"`
}

func NewConsumptionService(recordStore store.RecordStore) *ConsumptionService {
	return &ConsumptionService{store: recordStore}
}

// Record appends one log entry. Callers on the primary mutation path should
// use RecordBestEffort instead.
func (s *ConsumptionService) Record(ctx context.Context, entry *models.ConsumptionLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	id, err := s.store.Insert(ctx, store.CollectionConsumptionLogs, entry.ToRecord())
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// RecordBestEffort appends and swallows any failure, surfacing it only in logs.
func (s *ConsumptionService) RecordBestEffort(ctx context.Context, entry *models.ConsumptionLogEntry) {
	if err := s.Record(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"product_id": entry.ProductID,
			"action":     entry.ActionType,
		}).Warn("Failed to append consumption log entry")
	}
}

// GetHistory scans a product's log and derives the aggregates. Zero entries
// yields all-zero stats, never NaN and never an error.
func (s *ConsumptionService) GetHistory(ctx context.Context, householdID, productID string, windowMonths int) (*HistoryStats, error) {
	records, err := s.store.Query(ctx, store.CollectionConsumptionLogs, []store.Filter{
		{Field: "householdId", Value: householdID},
		{Field: "productId", Value: productID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var cutoff time.Time
	if windowMonths > 0 {
		cutoff = now.AddDate(0, -windowMonths, 0)
	}

	entries := make([]models.ConsumptionLogEntry, 0, len(records))
	for _, rec := range records {
		entry := models.ConsumptionLogFromRecord(rec.ID, rec.Data)
		if !cutoff.IsZero() && entry.CreatedAt.Before(cutoff) {
			continue
		}
		entries = append(entries, *entry)
	}

	// no composite server-side ordering assumed, sort in memory
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return computeStats(entries, now), nil
}

// HouseholdLog lists the newest entries across a household for display.
func (s *ConsumptionService) HouseholdLog(ctx context.Context, householdID string, limit int) ([]models.ConsumptionLogEntry, error) {
	records, err := s.store.Query(ctx, store.CollectionConsumptionLogs, []store.Filter{
		{Field: "householdId", Value: householdID},
	}, store.Options{})
	if err != nil {
		return nil, err
	}

	entries := make([]models.ConsumptionLogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, *models.ConsumptionLogFromRecord(rec.ID, rec.Data))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func computeStats(entries []models.ConsumptionLogEntry, now time.Time) *HistoryStats {
	stats := &HistoryStats{Entries: entries, TotalLogs: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	earliest := entries[0].CreatedAt
	var cycleDaysTotal int
	for _, entry := range entries {
		if entry.CreatedAt.Before(earliest) {
			earliest = entry.CreatedAt
		}
		switch entry.ActionType {
		case models.ActionConsume:
			stats.TotalConsumed += entry.Quantity
		case models.ActionPurchase, models.ActionCycleComplete:
			if entry.DurationDays > 0 {
				stats.TotalCycles++
				cycleDaysTotal += entry.DurationDays
			}
		}
	}

	stats.DaysSinceFirst = int(math.Ceil(now.Sub(earliest).Hours() / 24))
	if stats.DaysSinceFirst < 1 {
		stats.DaysSinceFirst = 1
	}
	stats.DailyRate = stats.TotalConsumed / float64(stats.DaysSinceFirst)

	if stats.TotalCycles > 0 {
		stats.AverageCycleDays = float64(cycleDaysTotal) / float64(stats.TotalCycles)
	}
	return stats
}
