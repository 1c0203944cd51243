package tenant

import (
	"net"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxTenantKey = "current_tenant"

// ResolveTenant maps the request host to a tenant through its registered
// domains and stores the tenant in the request locals. Unknown hosts are
// rejected: no tenant, no data.
func ResolveTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		host := c.Hostname()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if host == "" {
			return fiber.NewError(fiber.StatusForbidden, "No tenant for this host")
		}

		var domain models.Domain
		if err := database.DB.Where("domain = ?", host).First(&domain).Error; err != nil {
			return fiber.NewError(fiber.StatusForbidden, "No tenant for this host")
		}

		var t models.Tenant
		if err := database.DB.First(&t, "id = ?", domain.TenantID).Error; err != nil {
			return fiber.NewError(fiber.StatusForbidden, "No tenant for this host")
		}

		c.Locals(CtxTenantKey, &t)
		return c.Next()
	}
}

// CurrentTenant returns the tenant stored by ResolveTenant.
func CurrentTenant(c *fiber.Ctx) (*models.Tenant, error) {
	t, ok := c.Locals(CtxTenantKey).(*models.Tenant)
	if !ok || t == nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "No tenant resolved for this request")
	}
	return t, nil
}
