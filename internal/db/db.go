package db

import (
	"log"
	"os"
	"strings"

	"codenest/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens a GORM connection from DATABASE_URL and runs migrations.
// A postgres:// DSN selects the postgres driver, sqlite:// the cgo-free
// sqlite driver (local dev and tests).
func Init() (*gorm.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "sqlite://codenest.db"
		log.Println("DATABASE_URL not set, defaulting to 'sqlite://codenest.db'")
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dbURL, "postgres://"):
		dialector = postgres.Open(dbURL)
	case strings.HasPrefix(dbURL, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://"))
	default:
		log.Fatalf("Invalid DATABASE_URL prefix, must start with 'postgres://' or 'sqlite://'")
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return conn, nil
}

// Migrate runs the auto migrations for every table.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.UserPreference{},
		&models.Snippet{},
		&models.Doc{},
		&models.Bug{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
		&models.Follow{},
		&models.BlockedUser{},
		&models.Report{},
		&models.Notification{},
	)
}
