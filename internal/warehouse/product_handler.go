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

type ProductResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	CreateDate time.Time `json:"create_date"`
}

type CreateProductRequest struct {
	Name string `json:"name"`
}

type UpdateProductRequest struct {
	Name *string `json:"name"`
}

func productResponse(p *models.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, CreateDate: p.CreateDate}
}

// GET /api/v1/warehouse/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			return tx.Order("create_date desc, id desc").Find(&products).Error
		}); err != nil {
			return translateErr(err, "Could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, productResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/v1/warehouse/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		var p models.Product
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Product{}).Where("name = ?", body.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "A product with this name already exists")
			}

			p = models.Product{Name: body.Name, CreateDate: time.Now()}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionCreate,
				EntityType:  audit.EntityProduct,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Product '%s' created.", p.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not create product")
		}

		return c.Status(fiber.StatusCreated).JSON(productResponse(&p))
	}
}

// GET /api/v1/warehouse/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return nil
		}); err != nil {
			return translateErr(err, "Could not load product")
		}
		return c.JSON(productResponse(&p))
	}
}

// PUT/PATCH /api/v1/warehouse/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var p models.Product
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}

			if body.Name != nil {
				name := strings.TrimSpace(*body.Name)
				if name == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
				}
				if name != p.Name {
					var count int64
					if err := tx.Model(&models.Product{}).Where("name = ? AND id <> ?", name, p.ID).Count(&count).Error; err != nil {
						return err
					}
					if count > 0 {
						return fiber.NewError(fiber.StatusBadRequest, "A product with this name already exists")
					}
					p.Name = name
				}
			}

			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionUpdate,
				EntityType:  audit.EntityProduct,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Product '%s' updated.", p.Name),
			})
		}); err != nil {
			return translateErr(err, "Could not update product")
		}

		return c.JSON(productResponse(&p))
	}
}

// DELETE /api/v1/warehouse/products/:id
func DeleteProductHandler() fiber.Handler {
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
			var p models.Product
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}

			// Deleting a product cascades to its lots and their pallet
			// associations.
			lotIDs := tx.Model(&models.Lot{}).Select("id").Where("product_id = ?", p.ID)
			if err := tx.Where("lot_id IN (?)", lotIDs).Delete(&models.PalletLot{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.Lot{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Product{}, "id = ?", p.ID).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionDelete,
				EntityType:  audit.EntityProduct,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Product '%s' (ID: %d) deleted.", p.Name, p.ID),
			})
		}); err != nil {
			return translateErr(err, "Could not delete product")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
