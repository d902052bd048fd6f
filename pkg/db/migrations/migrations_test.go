package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/olog/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrations.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	for i := 0; i < 2; i++ {
		if err := m.Migrate(ctx); err != nil {
			t.Fatalf("migrate run %d failed: %v", i+1, err)
		}
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, status := range statuses {
		if !status.Applied {
			t.Errorf("expected migration %d (%s) to be applied", status.Version, status.Description)
		}
	}

	for _, table := range []any{&models.Document{}, &models.Term{}, &models.Scope{}, &models.Sequence{}} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table for %T to exist", table)
		}
	}
}

func TestRollbackRemovesLastMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	if err := m.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !db.Migrator().HasIndex(&models.Term{}, rangeIndex) {
		t.Fatalf("expected range index to exist")
	}

	if err := m.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if db.Migrator().HasIndex(&models.Term{}, rangeIndex) {
		t.Fatalf("expected range index to be dropped")
	}
	if !db.Migrator().HasTable(&models.Sequence{}) {
		t.Fatalf("expected sequence table to survive a single rollback")
	}

	if err := m.Rollback(ctx); err != nil {
		t.Fatalf("second rollback failed: %v", err)
	}
	if db.Migrator().HasTable(&models.Sequence{}) {
		t.Fatalf("expected sequence table to be dropped")
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var applied []int
	for _, status := range statuses {
		if status.Applied {
			applied = append(applied, status.Version)
		}
	}
	if len(applied) != 1 || applied[0] != 1 {
		t.Fatalf("expected only migration 1 to stay applied, got %v", applied)
	}

	if err := m.Migrate(ctx); err != nil {
		t.Fatalf("re-migrate failed: %v", err)
	}
	if !db.Migrator().HasIndex(&models.Term{}, rangeIndex) {
		t.Fatalf("expected range index to be restored")
	}
}

func TestRollbackWithoutHistory(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db)

	if err := db.AutoMigrate(&migrationHistory{}); err != nil {
		t.Fatalf("failed to create history table: %v", err)
	}
	if err := m.Rollback(context.Background()); err == nil {
		t.Fatalf("expected rollback without applied migrations to fail")
	}
}
