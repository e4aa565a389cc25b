package db

import (
	"investjournal/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.Journal{},
		&models.ReviewLog{},
		&models.SystemSetting{},
	); err != nil {
		return err
	}
	// Rows written before sell_records existed get an empty ledger.
	if db.Gorm.Migrator().HasColumn(&models.Journal{}, "sell_records") {
		if err := db.Gorm.Exec(`UPDATE journals SET sell_records = '[]'::jsonb WHERE sell_records IS NULL`).Error; err != nil {
			return err
		}
	}
	return nil
}
