package storage

import (
	"context"
	"errors"

	"exile-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SanctionRepository handles database operations for SanctionRecord
type SanctionRepository struct {
	db *gorm.DB
}

func NewSanctionRepository(db *gorm.DB) *SanctionRepository {
	return &SanctionRepository{db: db}
}

// MigrateTable ensures the exiled_users table exists
func (r *SanctionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.SanctionRecord{})
}

// Get returns the record for id, or nil when there is none.
func (r *SanctionRepository) Get(ctx context.Context, id string) (*models.SanctionRecord, error) {
	var record models.SanctionRecord
	result := r.db.WithContext(ctx).Where("id = ?", id).Take(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &record, nil
}

// Upsert inserts the record or replaces the nickname and reason of the
// existing record with the same id.
func (r *SanctionRepository) Upsert(ctx context.Context, record *models.SanctionRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"old_nickname", "reason", "updated_at"}),
	}).Create(record).Error
}

// Delete removes the record for id. Deleting a missing id is not an error.
func (r *SanctionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SanctionRecord{}).Error
}

// List returns every record ordered by creation time.
func (r *SanctionRepository) List(ctx context.Context) ([]models.SanctionRecord, error) {
	var records []models.SanctionRecord
	result := r.db.WithContext(ctx).Order("created_at").Find(&records)
	return records, result.Error
}

// Count returns the number of records.
func (r *SanctionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	result := r.db.WithContext(ctx).Model(&models.SanctionRecord{}).Count(&n)
	return n, result.Error
}

// Reset drops and recreates the table.
func (r *SanctionRepository) Reset() error {
	if err := r.db.Migrator().DropTable(&models.SanctionRecord{}); err != nil {
		return err
	}
	return r.MigrateTable()
}
