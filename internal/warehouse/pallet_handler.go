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

type PalletLotDetail struct {
	ID          uint   `json:"id"`
	Pallet      uint   `json:"pallet"`
	Lot         uint   `json:"lot"`
	LotName     string `json:"lot_name"`
	ProductName string `json:"product_name"`
}

type PalletResponse struct {
	ID                uint              `json:"id"`
	Name              string            `json:"name"`
	Warehouse         *uint             `json:"warehouse"`
	WarehouseName     *string           `json:"warehouse_name"`
	PalletLotsDetails []PalletLotDetail `json:"pallet_lots_details"`
	CreateDate        time.Time         `json:"create_date"`
	InDate            *time.Time        `json:"in_date"`
	OutDate           *time.Time        `json:"out_date"`
	IsOut             bool              `json:"is_out"`
	Defective         bool              `json:"defective"`
}

type CreatePalletRequest struct {
	Name      string     `json:"name"`
	Warehouse *uint      `json:"warehouse"`
	LotsIDs   []uint     `json:"lots_ids"`
	InDate    *time.Time `json:"in_date"`
	OutDate   *time.Time `json:"out_date"`
	IsOut     bool       `json:"is_out"`
	Defective bool       `json:"defective"`
}

// The warehouse reference and the in/out dates are nullable columns, so their
// update fields must distinguish "clear this" (explicit null) from "leave it
// alone" (key omitted).
type UpdatePalletRequest struct {
	Name      *string             `json:"name"`
	Warehouse Nullable[uint]      `json:"warehouse"`
	LotsIDs   *[]uint             `json:"lots_ids"`
	InDate    Nullable[time.Time] `json:"in_date"`
	OutDate   Nullable[time.Time] `json:"out_date"`
	IsOut     *bool               `json:"is_out"`
	Defective *bool               `json:"defective"`
}

func palletResponse(tx *gorm.DB, p *models.Pallet) (PalletResponse, error) {
	resp := PalletResponse{
		ID:         p.ID,
		Name:       p.Name,
		Warehouse:  p.WarehouseID,
		CreateDate: p.CreateDate,
		InDate:     p.InDate,
		OutDate:    p.OutDate,
		IsOut:      p.IsOut,
		Defective:  p.Defective,
	}

	if p.WarehouseID != nil {
		var w models.Warehouse
		if err := tx.First(&w, "id = ?", *p.WarehouseID).Error; err == nil {
			resp.WarehouseName = &w.Name
		}
	}

	var joins []models.PalletLot
	if err := tx.Preload("Lot").Preload("Lot.Product").
		Where("pallet_id = ?", p.ID).
		Order("id asc").
		Find(&joins).Error; err != nil {
		return resp, err
	}
	details := make([]PalletLotDetail, 0, len(joins))
	for _, j := range joins {
		details = append(details, PalletLotDetail{
			ID:          j.ID,
			Pallet:      j.PalletID,
			Lot:         j.LotID,
			LotName:     j.Lot.Name,
			ProductName: j.Lot.Product.Name,
		})
	}
	resp.PalletLotsDetails = details
	return resp, nil
}

// resolveLots validates a requested lot id set and returns the matching rows.
// The set is deduplicated so the unique (pallet, lot) pair holds; any unknown
// id fails the whole request before a single row is written.
func resolveLots(tx *gorm.DB, ids []uint) ([]models.Lot, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var lots []models.Lot
	if err := tx.Where("id IN ?", unique).Find(&lots).Error; err != nil {
		return nil, err
	}
	if len(lots) != len(unique) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unknown lot id in lots_ids")
	}
	return lots, nil
}

func replacePalletLots(tx *gorm.DB, palletID uint, lots []models.Lot) error {
	if err := tx.Where("pallet_id = ?", palletID).Delete(&models.PalletLot{}).Error; err != nil {
		return err
	}
	for _, lot := range lots {
		if err := tx.Create(&models.PalletLot{PalletID: palletID, LotID: lot.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GET /api/v1/warehouse/pallets
func ListPalletsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}

		var res []PalletResponse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var pallets []models.Pallet
			if err := tx.Order("create_date desc, id desc").Find(&pallets).Error; err != nil {
				return err
			}
			res = make([]PalletResponse, 0, len(pallets))
			for i := range pallets {
				r, err := palletResponse(tx, &pallets[i])
				if err != nil {
					return err
				}
				res = append(res, r)
			}
			return nil
		}); err != nil {
			return translateErr(err, "Could not list pallets")
		}
		return c.JSON(res)
	}
}

// POST /api/v1/warehouse/pallets
func CreatePalletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}

		var body CreatePalletRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		var res PalletResponse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Pallet{}).Where("name = ?", body.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "A pallet with this name already exists")
			}

			if body.Warehouse != nil {
				var w models.Warehouse
				if err := tx.First(&w, "id = ?", *body.Warehouse).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown warehouse")
				}
			}
			lots, err := resolveLots(tx, body.LotsIDs)
			if err != nil {
				return err
			}

			p := models.Pallet{
				Name:        body.Name,
				WarehouseID: body.Warehouse,
				CreateDate:  time.Now(),
				InDate:      body.InDate,
				OutDate:     body.OutDate,
				IsOut:       body.IsOut,
				Defective:   body.Defective,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if err := replacePalletLots(tx, p.ID, lots); err != nil {
				return err
			}
			if err := audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionCreate,
				EntityType:  audit.EntityPallet,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Pallet '%s' created.", p.Name),
			}); err != nil {
				return err
			}

			res, err = palletResponse(tx, &p)
			return err
		}); err != nil {
			return translateErr(err, "Could not create pallet")
		}

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GET /api/v1/warehouse/pallets/:id
func GetPalletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var res PalletResponse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var p models.Pallet
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Pallet not found")
			}
			var rerr error
			res, rerr = palletResponse(tx, &p)
			return rerr
		}); err != nil {
			return translateErr(err, "Could not load pallet")
		}
		return c.JSON(res)
	}
}

// PUT/PATCH /api/v1/warehouse/pallets/:id
//
// Updating the out/defective flags is transition-audited: only a false→true
// change emits the extra MARK_OUT / MARK_DEFECTIVE entries, so a single
// update can produce up to three entries.
func UpdatePalletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, userID, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdatePalletRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var res PalletResponse
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var p models.Pallet
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Pallet not found")
			}

			// Prior flag state, needed to detect false→true transitions.
			wasOut := p.IsOut
			wasDefective := p.Defective

			if body.Name != nil {
				name := strings.TrimSpace(*body.Name)
				if name == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
				}
				if name != p.Name {
					var count int64
					if err := tx.Model(&models.Pallet{}).Where("name = ? AND id <> ?", name, p.ID).Count(&count).Error; err != nil {
						return err
					}
					if count > 0 {
						return fiber.NewError(fiber.StatusBadRequest, "A pallet with this name already exists")
					}
					p.Name = name
				}
			}
			if body.Warehouse.Set {
				if body.Warehouse.Value != nil {
					var w models.Warehouse
					if err := tx.First(&w, "id = ?", *body.Warehouse.Value).Error; err != nil {
						return fiber.NewError(fiber.StatusBadRequest, "Unknown warehouse")
					}
				}
				p.WarehouseID = body.Warehouse.Value
			}
			if body.InDate.Set {
				p.InDate = body.InDate.Value
			}
			if body.OutDate.Set {
				p.OutDate = body.OutDate.Value
			}
			if body.IsOut != nil {
				p.IsOut = *body.IsOut
			}
			if body.Defective != nil {
				p.Defective = *body.Defective
			}

			if body.LotsIDs != nil {
				lots, err := resolveLots(tx, *body.LotsIDs)
				if err != nil {
					return err
				}
				if err := replacePalletLots(tx, p.ID, lots); err != nil {
					return err
				}
			}

			if err := tx.Save(&p).Error; err != nil {
				return err
			}

			if err := audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionUpdate,
				EntityType:  audit.EntityPallet,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Pallet '%s' updated.", p.Name),
			}); err != nil {
				return err
			}
			if !wasOut && p.IsOut {
				if err := audit.Record(tx, audit.LogOptions{
					UserID:      userID,
					Action:      models.ActionMarkOut,
					EntityType:  audit.EntityPallet,
					EntityID:    p.ID,
					Description: fmt.Sprintf("Pallet '%s' marked as out.", p.Name),
				}); err != nil {
					return err
				}
			}
			if !wasDefective && p.Defective {
				if err := audit.Record(tx, audit.LogOptions{
					UserID:      userID,
					Action:      models.ActionMarkDefective,
					EntityType:  audit.EntityPallet,
					EntityID:    p.ID,
					Description: fmt.Sprintf("Pallet '%s' marked as defective.", p.Name),
				}); err != nil {
					return err
				}
			}

			var rerr error
			res, rerr = palletResponse(tx, &p)
			return rerr
		}); err != nil {
			return translateErr(err, "Could not update pallet")
		}

		return c.JSON(res)
	}
}

// DELETE /api/v1/warehouse/pallets/:id
func DeletePalletHandler() fiber.Handler {
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
			var p models.Pallet
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Pallet not found")
			}

			if err := tx.Where("pallet_id = ?", p.ID).Delete(&models.PalletLot{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Pallet{}, "id = ?", p.ID).Error; err != nil {
				return err
			}
			return audit.Record(tx, audit.LogOptions{
				UserID:      userID,
				Action:      models.ActionDelete,
				EntityType:  audit.EntityPallet,
				EntityID:    p.ID,
				Description: fmt.Sprintf("Pallet '%s' (ID: %d) deleted.", p.Name, p.ID),
			})
		}); err != nil {
			return translateErr(err, "Could not delete pallet")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
