package database

import (
	"log"

	"gorm.io/gorm"
)

// legacyROIKey is the key older overlay builds stored the capture area under
const legacyROIKey = "roi"

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateLegacyROIKey(db); err != nil {
		return err
	}
	if err := normalizeRoundLogSource(db); err != nil {
		return err
	}
	return nil
}

// migrateLegacyROIKey renames the legacy "roi" settings key to "captureArea".
// If both exist the newer key wins and the legacy row is dropped.
// This is safe to run multiple times.
func migrateLegacyROIKey(db *gorm.DB) error {
	if !db.Migrator().HasTable("settings") {
		return nil
	}

	var count int64
	if err := db.Table("settings").Where("key = ?", legacyROIKey).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	var current int64
	db.Table("settings").Where("key = ?", "captureArea").Count(&current)

	if current > 0 {
		result := db.Exec(`DELETE FROM settings WHERE key = ?`, legacyROIKey)
		if result.Error != nil {
			return result.Error
		}
		log.Printf("Dropped legacy %q setting (captureArea already present)", legacyROIKey)
		return nil
	}

	result := db.Exec(`UPDATE settings SET key = 'captureArea' WHERE key = ?`, legacyROIKey)
	if result.Error != nil {
		return result.Error
	}
	log.Printf("Migrated legacy %q setting to captureArea", legacyROIKey)
	return nil
}

// normalizeRoundLogSource backfills empty source values on round_logs
func normalizeRoundLogSource(db *gorm.DB) error {
	if !db.Migrator().HasColumn("round_logs", "source") {
		return nil
	}

	result := db.Exec(`UPDATE round_logs SET source = 'manual' WHERE source IS NULL OR source = ''`)
	if result.Error != nil {
		log.Printf("Warning: failed to normalize round_logs source values: %v", result.Error)
		return nil
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized %d round_logs source values", result.RowsAffected)
	}
	return nil
}
