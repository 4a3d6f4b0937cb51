package database

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ssovee/Open-Data-API/models"
)

//go:embed mock_data/*.json
var mockData embed.FS

// Seed loads the bundled mock data into every empty resource table. With
// force set, existing rows are removed first.
func Seed(db *gorm.DB, force bool, logger *slog.Logger) error {
	steps := []struct {
		file string
		seed func(*gorm.DB, []byte, bool) (int, error)
	}{
		{"users.json", seedTable[models.User]},
		{"movies.json", seedTable[models.Movie]},
		{"jobs.json", seedTable[models.Job]},
		{"products.json", seedTable[models.Product]},
	}

	for _, step := range steps {
		raw, err := mockData.ReadFile("mock_data/" + step.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", step.file, err)
		}
		n, err := step.seed(db, raw, force)
		if err != nil {
			return fmt.Errorf("seed %s: %w", step.file, err)
		}
		if n > 0 {
			logger.Info("seeded mock data", "file", step.file, "rows", n)
		}
	}
	return nil
}

func seedTable[T any](db *gorm.DB, raw []byte, force bool) (int, error) {
	var count int64
	if err := db.Model(new(T)).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 && !force {
		return 0, nil
	}

	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if count > 0 {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
				return err
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
