package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ssovee/Open-Data-API/config"
	"github.com/ssovee/Open-Data-API/models"
)

var DB *gorm.DB

// Open connects to the configured driver: "sqlite" (file path) or "postgres" (dsn).
func Open(driver, sqlitePath, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dialector = sqlite.Open(sqlitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogger(slog.Default()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.Exec("PRAGMA encoding = 'UTF-8'")
	}
	return db, nil
}

// NewLogger routes gorm's warnings, slow queries and errors to l. Lookups
// that miss are answered as 404s, so ErrRecordNotFound is not logged.
func NewLogger(l *slog.Logger) logger.Interface {
	return logger.New(slog.NewLogLogger(l.Handler(), slog.LevelWarn), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Connect opens the database described by config.C and stores it in DB.
func Connect() error {
	db, err := Open(config.C.Database.Driver, config.C.Database.SQLitePath, config.C.Database.DSN)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// RunMigrations creates or updates every table the API serves.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Job{},
		&models.Product{},
		&models.Note{},
		&models.Account{},
		&models.Session{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
