package auth

import (
	"strings"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type GetTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type DomainResponse struct {
	Domain    string `json:"domain"`
	IsPrimary bool   `json:"is_primary"`
}

type TenantResponse struct {
	ID         uint             `json:"id"`
	Name       string           `json:"name"`
	SchemaName string           `json:"schema_name"`
	AllDomains []DomainResponse `json:"all_domains"`
}

// POST /api/v1/get-token
//
// Returns the user's durable token plus every tenant the user is a member of,
// with all domain aliases, so the client can pick which tenant host to talk
// to afterwards.
func GetTokenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GetTokenRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
		}

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unable to log in with provided credentials")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unable to log in with provided credentials")
		}

		token, err := GetOrCreateToken(user.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not issue token")
		}

		var memberships []models.TenantMembership
		if err := database.DB.
			Preload("Tenant").
			Preload("Tenant.Domains").
			Where("user_id = ?", user.ID).
			Find(&memberships).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load tenants")
		}

		tenants := make([]TenantResponse, 0, len(memberships))
		for _, m := range memberships {
			domains := make([]DomainResponse, 0, len(m.Tenant.Domains))
			for _, d := range m.Tenant.Domains {
				domains = append(domains, DomainResponse{Domain: d.Domain, IsPrimary: d.IsPrimary})
			}
			tenants = append(tenants, TenantResponse{
				ID:         m.Tenant.ID,
				Name:       m.Tenant.Name,
				SchemaName: m.Tenant.SchemaName,
				AllDomains: domains,
			})
		}

		return c.JSON(fiber.Map{
			"token":             token.Key,
			"user_id":           user.ID,
			"username":          user.Username,
			"available_tenants": tenants,
		})
	}
}
