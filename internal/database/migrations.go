package database

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for migrations
func (MigrationRecord) TableName() string {
	return "_tailtown_migrations"
}

// RunMigrations executes all pending SQL migrations in filename order
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := listMigrations()
	if err != nil {
		return err
	}

	applied, skipped := 0, 0
	for _, file := range files {
		var count int64
		db.Model(&MigrationRecord{}).Where("name = ?", file).Count(&count)
		if count > 0 {
			skipped++
			continue
		}
		if err := applyMigration(db, file); err != nil {
			return err
		}
		applied++
	}

	log.Printf("Migrations: %d applied, %d already in place", applied, skipped)
	return nil
}

// listMigrations returns the embedded .sql files sorted by the numeric
// filename prefix (001_, 002_, ...)
func listMigrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyMigration executes one migration file and records it in the ledger
func applyMigration(db *gorm.DB, file string) error {
	content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", file, err)
	}

	log.Printf("  → Applying migration %s...", file)
	if err := db.Exec(string(content)).Error; err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", file, err)
	}

	if err := db.Create(&MigrationRecord{Name: file}).Error; err != nil {
		return fmt.Errorf("failed to record migration %s: %w", file, err)
	}

	log.Printf("  ✓ Migration %s applied", file)
	return nil
}
