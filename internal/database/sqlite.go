package database

import (
	"log"

	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the sqlite database at dbPath and migrates the schema.
// debug raises the gorm log level to Info.
func Initialize(dbPath string, debug bool) error {
	db, err := Open(dbPath, debug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open opens and migrates a database without touching the package-level handle
func Open(dbPath string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.Setting{}, &models.RoundLog{}); err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
