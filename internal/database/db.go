package database

import (
	"fmt"
	"regexp"

	"jar-backend/internal/config"
	"jar-backend/internal/logger"
	"jar-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Schema names end up in SET LOCAL / CREATE SCHEMA statements, so they are
// restricted to the same pattern django-tenants allows.
var schemaNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func ValidSchemaName(name string) bool {
	return schemaNameRe.MatchString(name)
}

func Init(cfg *config.Config) {
	log := logger.Get()

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}

	if err := MigrateShared(DB); err != nil {
		log.Fatal("shared schema migration failed", zap.Error(err))
	}

	// Every known tenant schema is migrated at boot so new columns reach all
	// partitions, the same way django-tenants' migrate_schemas does.
	var tenants []models.Tenant
	if err := DB.Find(&tenants).Error; err != nil {
		log.Fatal("could not list tenants", zap.Error(err))
	}
	for _, t := range tenants {
		if err := MigrateTenant(t.SchemaName); err != nil {
			log.Fatal("tenant schema migration failed",
				zap.String("schema", t.SchemaName), zap.Error(err))
		}
	}

	log.Info("database ready", zap.Int("tenant_schemas", len(tenants)))
}

// MigrateShared migrates the models that live in the shared (public) schema.
func MigrateShared(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.Domain{},
		&models.User{},
		&models.TenantMembership{},
		&models.AuthToken{},
	)
}

// MigrateTenant creates the tenant's schema if needed and migrates the
// tenant-partitioned models into it.
func MigrateTenant(schema string) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}
	if DB.Dialector.Name() != "postgres" {
		// The sqlite test database has a single namespace.
		return migrateTenantModels(DB)
	}
	if err := DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema)).Error; err != nil {
		return err
	}
	return InTenant(schema, migrateTenantModels)
}

func migrateTenantModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Lot{},
		&models.Warehouse{},
		&models.Pallet{},
		&models.PalletLot{},
		&models.ActionLog{},
	)
}

// InTenant runs fn inside one transaction whose search_path is pinned to the
// tenant's schema (shared tables stay reachable through public). It is the
// single entry point for all tenant-partition access, and the transaction
// boundary that makes an entity mutation and its audit entries atomic: if fn
// returns an error, everything rolls back.
func InTenant(schema string, fn func(tx *gorm.DB) error) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		if DB.Dialector.Name() == "postgres" {
			if err := tx.Exec(fmt.Sprintf(`SET LOCAL search_path TO %q, public`, schema)).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
}
