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

type LotResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Product     uint      `json:"product"`
	ProductName string    `json:"product_name"`
	CreateDate  time.Time `json:"create_date"`
}

type CreateLotRequest struct {
	Name    string `json:"name"`
	Product uint   `json:"product"`
}

type UpdateLotRequest struct {
	Name    *string `json:"name"`
	Product *uint   `json:"product"`
}

func lotResponse(l *models.Lot) LotResponse {
	return LotResponse{
		ID:          l.ID,
		Name:        l.Name,
		Product:     l.ProductID,
		ProductName: l.Product.Name,
		CreateDate:  l.CreateDate,
	}
}

// GET /api/v1/warehouse/lots
func ListLotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}

		var lots []models.Lot
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			return tx.Preload("Product").Order("create_date desc, id desc").Find(&lots).Error
		}); err != nil {
			return translateErr(err, "Could not list lots")
		}

		res := make([]LotResponse, 0, len(lots))
		for i := range lots {
			res = append(res, lotResponse(&lots[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/v1/warehouse/lots
func CreateLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}

		var body CreateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.Product == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Product is required")
		}

		var l models.Lot
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, "id = ?", body.Product).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown product")
			}
			var count int64
			if err := tx.Model(&models.Lot{}).Where("name = ?", body.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "A lot with this name already exists")
			}

			l = models.Lot{Name: body.Name, ProductID: product.ID, CreateDate: time.Now()}
			if err := tx.Create(&l).Error; err != nil {
				return err
			}
			l.Product = product
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionCreate,
				EntityType:  audit.EntityLot,
				EntityID:    l.ID,
				Description: fmt.Sprintf("Lot '%s' created for product '%s'.", l.Name, product.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not create lot")
		}

		return c.Status(fiber.StatusCreated).JSON(lotResponse(&l))
	}
}

// GET /api/v1/warehouse/lots/:id
func GetLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var l models.Lot
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.Preload("Product").First(&l, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Lot not found")
			}
			return nil
		}); err != nil {
			return translateErr(err, "Could not load lot")
		}
		return c.JSON(lotResponse(&l))
	}
}

// PUT/PATCH /api/v1/warehouse/lots/:id
func UpdateLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var l models.Lot
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.Preload("Product").First(&l, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Lot not found")
			}

			if body.Name != nil {
				name := strings.TrimSpace(*body.Name)
				if name == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
				}
				if name != l.Name {
					var count int64
					if err := tx.Model(&models.Lot{}).Where("name = ? AND id <> ?", name, l.ID).Count(&count).Error; err != nil {
						return err
					}
					if count > 0 {
						return fiber.NewError(fiber.StatusBadRequest, "A lot with this name already exists")
					}
					l.Name = name
				}
			}
			if body.Product != nil && *body.Product != l.ProductID {
				var product models.Product
				if err := tx.First(&product, "id = ?", *body.Product).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown product")
				}
				l.ProductID = product.ID
				l.Product = product
			}

			if err := tx.Save(&l).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionUpdate,
				EntityType:  audit.EntityLot,
				EntityID:    l.ID,
				Description: fmt.Sprintf("Lot '%s' updated.", l.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not update lot")
		}

		return c.JSON(lotResponse(&l))
	}
}

// DELETE /api/v1/warehouse/lots/:id
func DeleteLotHandler() fiber.Handler {
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
			var l models.Lot
			if err := tx.First(&l, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Lot not found")
			}

			if err := tx.Where("lot_id = ?", l.ID).Delete(&models.PalletLot{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Lot{}, "id = ?", l.ID).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionDelete,
				EntityType:  audit.EntityLot,
				EntityID:    l.ID,
				Description: fmt.Sprintf("Lot '%s' (ID: %d) deleted.", l.Name, l.ID),
			})
		}); err != nil {
			return translateErr(err, "Could not delete lot")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
