package service

import (
	"fmt"

	"exile-bot/internal/logger"
	"exile-bot/internal/storage"

	"gorm.io/gorm"
)

// InitSanctions migrates the sanction table and returns the service on top
// of it.
func InitSanctions(db *gorm.DB) (*SanctionService, error) {
	repo := storage.NewSanctionRepository(db)
	if err := repo.MigrateTable(); err != nil {
		return nil, fmt.Errorf("error migrating sanction table: %w", err)
	}
	logger.Info("Sanction repository initialized")
	return NewSanctionService(repo), nil
}
