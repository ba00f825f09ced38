package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/agilecoach-backend/internal/domain"
)

// AutoMigrateAll creates or alters the tables for every persisted model.
// It is safe to run on every start.
func AutoMigrateAll(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("automigrate: nil db")
	}
	for _, m := range types.Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	models := types.Models()
	s.log.Info("Running auto migrations", "driver", s.driver, "models", len(models))
	return AutoMigrateAll(s.db)
}
