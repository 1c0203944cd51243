package tenant

import (
	"jar-backend/internal/auth"
	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IsMember reports whether the user has a membership in the tenant. It hits
// the membership table on every call so the check always reflects current
// state, and fails closed on errors.
func IsMember(userID, tenantID uint) bool {
	var count int64
	err := database.DB.Model(&models.TenantMembership{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// RequireMembership denies the request unless the authenticated user belongs
// to the tenant resolved from the request host. It runs before any inventory
// handler, so a non-member never learns whether an id exists in the tenant.
func RequireMembership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		t, err := CurrentTenant(c)
		if err != nil {
			return err
		}
		if !IsMember(user.ID, t.ID) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have permission to access this tenant")
		}
		return c.Next()
	}
}
