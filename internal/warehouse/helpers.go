package warehouse

import (
	"errors"
	"strconv"

	"jar-backend/internal/auth"
	"jar-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// requestScope returns the tenant schema and acting user id for the current
// request. Both middlewares have already run by the time a handler is
// reached; this just pulls their results out of the locals.
func requestScope(c *fiber.Ctx) (string, *uint, error) {
	t, err := tenant.CurrentTenant(c)
	if err != nil {
		return "", nil, err
	}
	user, err := auth.CurrentUser(c)
	if err != nil {
		return "", nil, err
	}
	uid := user.ID
	return t.SchemaName, &uid, nil
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

// translateErr passes fiber errors through unchanged and maps constraint
// violations that slipped past the pre-checks to a validation failure rather
// than a raw server error.
func translateErr(err error, fallback string) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fiber.NewError(fiber.StatusBadRequest, "Constraint violation")
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
