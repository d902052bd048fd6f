package migrations

import (
	"context"
	"fmt"
	"sort"

	"github.com/mwantia/olog/pkg/db/models"
	"gorm.io/gorm"
)

// Migration is one versioned step of the document index schema
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// migrationHistory tracks applied migrations
type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

func (migrationHistory) TableName() string { return "index_migrations" }

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// Migrator applies the index migrations in version order. Every step and its
// history record are written in one transaction.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	migrations := indexMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return &Migrator{db: db, migrations: migrations}
}

func (m *Migrator) applied(ctx context.Context) (map[int]migrationHistory, error) {
	var rows []migrationHistory
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}

	applied := make(map[int]migrationHistory, len(rows))
	for _, row := range rows {
		applied[row.Version] = row
	}
	return applied, nil
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return fmt.Errorf("failed to create migration history table: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationHistory{
				Version:     migration.Version,
				Description: migration.Description,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}

	return nil
}

// Rollback reverts the most recent applied migration
func (m *Migrator) Rollback(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		last, ok := applied[migration.Version]
		if !ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&last).Error
		})
		if err != nil {
			return fmt.Errorf("rollback of migration %d failed: %w", migration.Version, err)
		}
		return nil
	}

	return fmt.Errorf("no migrations to rollback")
}

// Status lists every known migration and whether it is applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		_, ok := applied[migration.Version]
		statuses = append(statuses, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     ok,
		})
	}
	return statuses, nil
}

const rangeIndex = "idx_term_range"

func indexMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial document index schema",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Document{}, &models.Term{}, &models.Scope{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Scope{}, &models.Term{}, &models.Document{})
			},
		},
		{
			Version:     2,
			Description: "Id sequences for server-assigned document ids",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Sequence{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Sequence{})
			},
		},
		{
			Version:     3,
			Description: "Date range and sort lookups over index terms",
			Up: func(db *gorm.DB) error {
				return db.Exec("CREATE INDEX IF NOT EXISTS " + rangeIndex + " ON index_terms (collection, field, number)").Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP INDEX IF EXISTS " + rangeIndex).Error
			},
		},
	}
}
