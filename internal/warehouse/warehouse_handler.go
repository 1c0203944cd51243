package warehouse

import (
	"fmt"
	"strings"
	"time"

	"jar-backend/internal/audit"
	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WarehouseResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Address    *string   `json:"address"`
	CreateDate time.Time `json:"create_date"`
}

type CreateWarehouseRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// Address is a nullable column: an explicit null clears it, an omitted key
// leaves it alone.
type UpdateWarehouseRequest struct {
	Name    *string          `json:"name"`
	Address Nullable[string] `json:"address"`
}

func warehouseResponse(w *models.Warehouse) WarehouseResponse {
	return WarehouseResponse{ID: w.ID, Name: w.Name, Address: w.Address, CreateDate: w.CreateDate}
}

// GET /api/v1/warehouse/warehouses
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}

		var warehouses []models.Warehouse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			return tx.Order("create_date desc, id desc").Find(&warehouses).Error
		}); err != nil {
			return translateErr(err, "Could not list warehouses")
		}

		res := make([]WarehouseResponse, 0, len(warehouses))
		for i := range warehouses {
			res = append(res, warehouseResponse(&warehouses[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/v1/warehouse/warehouses
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}

		var body CreateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		var w models.Warehouse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Warehouse{}).Where("name = ?", body.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "A warehouse with this name already exists")
			}

			w = models.Warehouse{Name: body.Name, Address: body.Address, CreateDate: time.Now()}
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionCreate,
				EntityType:  audit.EntityWarehouse,
				EntityID:    w.ID,
				Description: fmt.Sprintf("Warehouse '%s' created.", w.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not create warehouse")
		}

		return c.Status(fiber.StatusCreated).JSON(warehouseResponse(&w))
	}
}

// GET /api/v1/warehouse/warehouses/:id
func GetWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var w models.Warehouse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.First(&w, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Warehouse not found")
			}
			return nil
		}); err != nil {
			return translateErr(err, "Could not load warehouse")
		}
		return c.JSON(warehouseResponse(&w))
	}
}

// PUT/PATCH /api/v1/warehouse/warehouses/:id
func UpdateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var w models.Warehouse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.First(&w, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Warehouse not found")
			}

			if body.Name != nil {
				name := strings.TrimSpace(*body.Name)
				if name == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
				}
				if name != w.Name {
					var count int64
					if err := tx.Model(&models.Warehouse{}).Where("name = ? AND id <> ?", name, w.ID).Count(&count).Error; err != nil {
						return err
					}
					if count > 0 {
						return fiber.NewError(fiber.StatusBadRequest, "A warehouse with this name already exists")
					}
					w.Name = name
				}
			}
			if body.Address.Set {
				w.Address = body.Address.Value
			}

			if err := tx.Save(&w).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionUpdate,
				EntityType:  audit.EntityWarehouse,
				EntityID:    w.ID,
				Description: fmt.Sprintf("Warehouse '%s' updated.", w.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not update warehouse")
		}

		return c.JSON(warehouseResponse(&w))
	}
}

// DELETE /api/v1/warehouse/warehouses/:id
func DeleteWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var w models.Warehouse
			if err := tx.First(&w, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Warehouse not found")
			}

			// Pallets are detached, not deleted, when their warehouse goes.
			if err := tx.Model(&models.Pallet{}).Where("warehouse_id = ?", w.ID).Update("warehouse_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Warehouse{}, "id = ?", w.ID).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionDelete,
				EntityType:  audit.EntityWarehouse,
				EntityID:    w.ID,
				Description: fmt.Sprintf("Warehouse '%s' (ID: %d) deleted.", w.Name, w.ID),
			})
		}); err != nil {
			return translateErr(err, "Could not delete warehouse")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
