package warehouse

import (
	"time"

	"jar-backend/internal/database"
	"jar-backend/internal/models"
	"jar-backend/internal/pagination"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReportPallet struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Warehouse  *uint      `json:"warehouse"`
	CreateDate time.Time  `json:"create_date"`
	InDate     *time.Time `json:"in_date"`
	OutDate    *time.Time `json:"out_date"`
	IsOut      bool       `json:"is_out"`
	Defective  bool       `json:"defective"`
}

type LotPalletsReportItem struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	Product         uint           `json:"product"`
	ProductName     string         `json:"product_name"`
	CreateDate      time.Time      `json:"create_date"`
	ActiveOKPallets []ReportPallet `json:"active_ok_pallets"`
	CountOK         int            `json:"count_ok"`
	CountDefective  int64          `json:"count_defective"`
}

// GET /api/v1/warehouse/warehouses/:id/pallets-by-lot
//
// Reports, for one warehouse, every lot that still has at least one pallet
// there (is_out = false; exited pallets are out of scope entirely, defective
// ones are not). Per lot the non-defective pallets are listed and both the
// good and defective pallets are counted.
func PalletsByLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		schema, _, err := requestScope(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}
		params := pagination.FromQuery(c)

		var envelope pagination.Envelope
		if err := database.InTenant(schema, func(tx *gorm.DB) error {
			var w models.Warehouse
			if err := tx.First(&w, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Warehouse not found")
			}

			lotsHere := func() *gorm.DB {
				return tx.Model(&models.Lot{}).
					Joins("JOIN pallet_lots ON pallet_lots.lot_id = lots.id").
					Joins("JOIN pallets ON pallets.id = pallet_lots.pallet_id").
					Where("pallets.warehouse_id = ? AND pallets.is_out = ?", w.ID, false)
			}

			var total int64
			if err := lotsHere().Distinct("lots.id").Count(&total).Error; err != nil {
				return err
			}

			var lots []models.Lot
			if err := lotsHere().
				Select("DISTINCT lots.*").
				Preload("Product").
				Order("lots.name asc").
				Limit(params.Limit()).
				Offset(params.Offset()).
				Find(&lots).Error; err != nil {
				return err
			}

			items := make([]LotPalletsReportItem, 0, len(lots))
			for _, lot := range lots {
				var okPallets []models.Pallet
				if err := tx.
					Joins("JOIN pallet_lots ON pallet_lots.pallet_id = pallets.id").
					Where("pallet_lots.lot_id = ? AND pallets.warehouse_id = ? AND pallets.is_out = ? AND pallets.defective = ?",
						lot.ID, w.ID, false, false).
					Order("pallets.create_date asc, pallets.id asc").
					Find(&okPallets).Error; err != nil {
					return err
				}

				var defective int64
				if err := tx.Model(&models.Pallet{}).
					Joins("JOIN pallet_lots ON pallet_lots.pallet_id = pallets.id").
					Where("pallet_lots.lot_id = ? AND pallets.warehouse_id = ? AND pallets.is_out = ? AND pallets.defective = ?",
						lot.ID, w.ID, false, true).
					Count(&defective).Error; err != nil {
					return err
				}

				active := make([]ReportPallet, 0, len(okPallets))
				for _, p := range okPallets {
					active = append(active, ReportPallet{
						ID:         p.ID,
						Name:       p.Name,
						Warehouse:  p.WarehouseID,
						CreateDate: p.CreateDate,
						InDate:     p.InDate,
						OutDate:    p.OutDate,
						IsOut:      p.IsOut,
						Defective:  p.Defective,
					})
				}

				items = append(items, LotPalletsReportItem{
					ID:              lot.ID,
					Name:            lot.Name,
					Product:         lot.ProductID,
					ProductName:     lot.Product.Name,
					CreateDate:      lot.CreateDate,
					ActiveOKPallets: active,
					CountOK:         len(active),
					CountDefective:  defective,
				})
			}

			envelope = pagination.NewEnvelope(total, params, items)
			return nil
		}); err != nil {
			return translateErr(err, "Could not build report")
		}

		return c.JSON(envelope)
	}
}
