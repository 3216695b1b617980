package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nutriflow/backend/internal/models"
	"gorm.io/gorm"
)

const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned by Rollback when nothing has been applied.
var ErrNoMigrations = errors.New("no migrations to rollback")

// Migration is one SQL file. Version is the file name up to the first underscore.
type Migration struct {
	Version string
	Name    string
}

// SchemaMigration records an applied migration
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey;size:50"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies and rolls back the SQL files in a directory
type Migrator struct {
	db  *gorm.DB
	dir string
}

func NewMigrator(db *gorm.DB, dir string) *Migrator {
	return &Migrator{db: db, dir: dir}
}

// Migrations lists the forward migrations in dir, sorted by name.
func (m *Migrator) Migrations() ([]Migration, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		out = append(out, Migration{Version: strings.SplitN(name, "_", 2)[0], Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Up applies every migration that is not yet recorded and returns their names.
func (m *Migrator) Up() ([]string, error) {
	if err := m.db.AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	migrations, err := m.Migrations()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, mig := range migrations {
		var count int64
		if err := m.db.Model(&SchemaMigration{}).Where("version = ?", mig.Version).Count(&count).Error; err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Printf("[Migrate] Skipping migration %s (already applied)", mig.Name)
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, mig.Name))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", mig.Name, err)
		}

		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", mig.Name, err)
			}
			record := SchemaMigration{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}

		log.Printf("[Migrate] Applied migration %s", mig.Name)
		applied = append(applied, mig.Name)
	}
	return applied, nil
}

// Rollback reverts the most recent migration using its _rollback.sql file
func (m *Migrator) Rollback() (string, error) {
	if err := m.db.AutoMigrate(&SchemaMigration{}); err != nil {
		return "", fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var last SchemaMigration
	err := m.db.Order("version DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoMigrations
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(m.dir, strings.TrimSuffix(last.Name, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", rollbackPath, err)
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		if err := tx.Delete(&SchemaMigration{}, "version = ?", last.Version).Error; err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[Migrate] Rolled back migration %s", last.Name)
	return last.Name, nil
}

// RunMigrations prepares the schema. SQLite gets gorm auto-migration; other
// databases run the SQL files in migrationsDir.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	if db.Dialector.Name() == "sqlite" {
		log.Printf("[Migrate] Using GORM auto-migration for SQLite")
		return db.AutoMigrate(models.All()...)
	}

	_, err := NewMigrator(db, migrationsDir).Up()
	return err
}
