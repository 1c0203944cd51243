package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory sqlite database, runs all migrations and
// installs it as the package-global DB for the duration of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// A pooled :memory: connection would open a second, empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateShared(db); err != nil {
		t.Fatalf("migrate shared models: %v", err)
	}
	if err := migrateTenantModels(db); err != nil {
		t.Fatalf("migrate tenant models: %v", err)
	}

	prev := DB
	DB = db
	t.Cleanup(func() {
		DB = prev
		sqlDB.Close()
	})
	return db
}
