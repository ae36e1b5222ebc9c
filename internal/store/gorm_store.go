// internal/store/gorm_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hogarlab/despensa-backend/internal/models"
)

// RecordRow is the single physical table backing every logical collection.
// Documents live in a jsonb column; collection and household_id are real
// columns because those are the only filters the contract promises to be
// efficient. Everything else goes through data->>'field'.
type RecordRow struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key"`
	Collection  string       `gorm:"size:64;not null;index:idx_records_coll_household"`
	HouseholdID string       `gorm:"size:64;index:idx_records_coll_household"`
	Data        models.JSONB `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RecordRow) TableName() string { return "records" }

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	row := RecordRow{
		ID:          uuid.New(),
		Collection:  collection,
		HouseholdID: models.AsString(data["householdId"]),
		Data:        models.JSONB(data),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", &UnavailableError{Op: "insert", Err: err}
	}

	return row.ID.String(), nil
}

func (s *GormStore) GetByID(ctx context.Context, collection, id string) (*Record, error) {
	var row RecordRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &UnavailableError{Op: "get", Err: err}
	}

	return &Record{ID: row.ID.String(), Data: map[string]interface{}(row.Data)}, nil
}

func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	var row RecordRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &UnavailableError{Op: "update", Err: err}
	}

	if row.Data == nil {
		row.Data = models.JSONB{}
	}
	for k, v := range fields {
		row.Data[k] = v
	}
	row.HouseholdID = models.AsString(row.Data["householdId"])

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return &UnavailableError{Op: "update", Err: err}
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&RecordRow{})
	if result.Error != nil {
		return &UnavailableError{Op: "delete", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Query(ctx context.Context, collection string, filters []Filter, opts Options) ([]Record, error) {
	query := s.db.WithContext(ctx).Model(&RecordRow{}).Where("collection = ?", collection)

	for _, f := range filters {
		if f.Field == "householdId" {
			query = query.Where("household_id = ?", fmt.Sprint(f.Value))
			continue
		}
		// jsonb ->> yields text, so every value is compared as its string form
		query = query.Where("data->>? = ?", f.Field, fmt.Sprint(f.Value))
	}

	if opts.OrderBy == "createdAt" || opts.OrderBy == "addedAt" {
		if opts.Descending {
			query = query.Order("created_at DESC")
		} else {
			query = query.Order("created_at ASC")
		}
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var rows []RecordRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, &UnavailableError{Op: "query", Err: err}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{ID: row.ID.String(), Data: map[string]interface{}(row.Data)})
	}
	return records, nil
}
