package audit

import (
	"strconv"
	"time"

	"jar-backend/internal/database"
	"jar-backend/internal/models"
	"jar-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ActionLogUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type ActionLogResponse struct {
	ID                uint              `json:"id"`
	User              *ActionLogUser    `json:"user"`
	ActionType        models.ActionType `json:"action_type"`
	Timestamp         time.Time         `json:"timestamp"`
	EntityType        string            `json:"entity_type"`
	ObjectID          uint              `json:"object_id"`
	AffectedObjectStr *string           `json:"affected_object_str"`
	Description       string            `json:"description"`
}

func actionLogResponse(tx *gorm.DB, entry *models.ActionLog, users map[uint]models.User) ActionLogResponse {
	resp := ActionLogResponse{
		ID:                entry.ID,
		ActionType:        entry.ActionType,
		Timestamp:         entry.Timestamp,
		EntityType:        entry.EntityType,
		ObjectID:          entry.ObjectID,
		AffectedObjectStr: AffectedObjectString(tx, entry.EntityType, entry.ObjectID),
		Description:       entry.Description,
	}
	if entry.UserID != nil {
		if u, ok := users[*entry.UserID]; ok {
			resp.User = &ActionLogUser{
				ID:        u.ID,
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
			}
		}
	}
	return resp
}

// loadUsers resolves the (nullable) user references of a batch of entries.
// Deleted users simply stay unresolved and render as null.
func loadUsers(tx *gorm.DB, entries []models.ActionLog) (map[uint]models.User, error) {
	ids := make([]uint, 0, len(entries))
	seen := make(map[uint]bool, len(entries))
	for _, e := range entries {
		if e.UserID != nil && !seen[*e.UserID] {
			seen[*e.UserID] = true
			ids = append(ids, *e.UserID)
		}
	}
	users := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var rows []models.User
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// GET /api/v1/warehouse/action-logs
func ListActionLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := tenant.CurrentTenant(c)
		if err != nil {
			return err
		}

		var res []ActionLogResponse
		if err := database.InTenant(t.SchemaName, func(tx *gorm.DB) error {
			var entries []models.ActionLog
			if err := tx.Order("timestamp desc, id desc").Find(&entries).Error; err != nil {
				return err
			}
			users, err := loadUsers(tx, entries)
			if err != nil {
				return err
			}
			res = make([]ActionLogResponse, 0, len(entries))
			for i := range entries {
				res = append(res, actionLogResponse(tx, &entries[i], users))
			}
			return nil
		}); err != nil {
			if e, ok := err.(*fiber.Error); ok {
				return e
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list action logs")
		}
		return c.JSON(res)
	}
}

// GET /api/v1/warehouse/action-logs/:id
func GetActionLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := tenant.CurrentTenant(c)
		if err != nil {
			return err
		}

		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var res ActionLogResponse
		if err := database.InTenant(t.SchemaName, func(tx *gorm.DB) error {
			var entry models.ActionLog
			if err := tx.First(&entry, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Action log not found")
			}
			users, err := loadUsers(tx, []models.ActionLog{entry})
			if err != nil {
				return err
			}
			res = actionLogResponse(tx, &entry, users)
			return nil
		}); err != nil {
			if e, ok := err.(*fiber.Error); ok {
				return e
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load action log")
		}
		return c.JSON(res)
	}
}
