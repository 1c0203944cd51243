package main

import (
	"flag"
	"os"

	"jar-backend/internal/config"
	"jar-backend/internal/database"
	"jar-backend/internal/logger"
	"jar-backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// setup bootstraps a fresh installation: the public tenant with its localhost
// domain, one client tenant with its schema and domain, and a superuser with
// a membership in that tenant. Safe to re-run; existing rows are kept.
func main() {
	tenantName := flag.String("tenant-name", "Cliente Alpha SAS", "display name of the initial tenant")
	schemaName := flag.String("schema", "alpha", "schema name of the initial tenant")
	domainName := flag.String("domain", "alpha.localhost", "primary domain of the initial tenant")
	username := flag.String("username", "", "superuser name (required)")
	password := flag.String("password", "", "superuser password (required)")
	email := flag.String("email", "", "superuser email")
	flag.Parse()

	log := logger.Get()
	if *username == "" || *password == "" {
		log.Error("both -username and -password are required")
		flag.Usage()
		os.Exit(2)
	}
	if !database.ValidSchemaName(*schemaName) {
		log.Fatal("invalid schema name", zap.String("schema", *schemaName))
	}

	cfg := config.Load()
	database.Init(cfg)
	db := database.DB

	ensureTenant := func(name, schema, domain string) *models.Tenant {
		var t models.Tenant
		if err := db.Where("schema_name = ?", schema).
			Attrs(models.Tenant{Name: name}).
			FirstOrCreate(&t, models.Tenant{SchemaName: schema}).Error; err != nil {
			log.Fatal("could not ensure tenant", zap.String("schema", schema), zap.Error(err))
		}
		var d models.Domain
		if err := db.Where("domain = ?", domain).
			Attrs(models.Domain{TenantID: t.ID, IsPrimary: true}).
			FirstOrCreate(&d, models.Domain{Domain: domain}).Error; err != nil {
			log.Fatal("could not ensure domain", zap.String("domain", domain), zap.Error(err))
		}
		if err := database.MigrateTenant(schema); err != nil {
			log.Fatal("could not migrate tenant schema", zap.String("schema", schema), zap.Error(err))
		}
		log.Info("tenant ready", zap.String("name", t.Name), zap.String("schema", schema), zap.String("domain", domain))
		return &t
	}

	ensureTenant("Public Tenant", "public", "localhost")
	client := ensureTenant(*tenantName, *schemaName, *domainName)

	var user models.User
	if err := db.Where("username = ?", *username).First(&user).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("could not hash password", zap.Error(err))
		}
		user = models.User{Username: *username, Email: *email, PasswordHash: string(hash)}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("could not create user", zap.Error(err))
		}
		log.Info("user created", zap.String("username", user.Username))
	} else {
		log.Info("user already exists", zap.String("username", user.Username))
	}

	var membership models.TenantMembership
	if err := db.Where("user_id = ? AND tenant_id = ?", user.ID, client.ID).
		Attrs(models.TenantMembership{IsActiveForUser: true}).
		FirstOrCreate(&membership, models.TenantMembership{UserID: user.ID, TenantID: client.ID}).Error; err != nil {
		log.Fatal("could not ensure membership", zap.Error(err))
	}

	log.Info("setup complete")
}
