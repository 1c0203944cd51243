package audit

import (
	"errors"
	"fmt"
	"time"

	"jar-backend/internal/models"

	"gorm.io/gorm"
)

// Entity type tags stored on action log rows.
const (
	EntityProduct   = "product"
	EntityLot       = "lot"
	EntityWarehouse = "warehouse"
	EntityPallet    = "pallet"
)

type LogOptions struct {
	UserID      *uint
	Action      models.ActionType
	EntityType  string
	EntityID    uint
	Description string
}

// Record appends one action log entry inside the caller's transaction, so the
// entry commits or rolls back together with the mutation it describes.
func Record(tx *gorm.DB, opts LogOptions) error {
	entry := models.ActionLog{
		UserID:      opts.UserID,
		ActionType:  opts.Action,
		Timestamp:   time.Now(),
		EntityType:  opts.EntityType,
		ObjectID:    opts.EntityID,
		Description: opts.Description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("action log write failed: %w", err)
	}
	return nil
}

// AffectedObjectString renders the referenced entity's current display
// string. The reference is resolved lazily at read time: if the row has since
// been deleted a placeholder is returned, and nil for unknown entity types.
func AffectedObjectString(tx *gorm.DB, entityType string, objectID uint) *string {
	var (
		name string
		err  error
	)

	switch entityType {
	case EntityProduct:
		var p models.Product
		if err = tx.First(&p, "id = ?", objectID).Error; err == nil {
			name = p.Name
		}
	case EntityLot:
		var l models.Lot
		if err = tx.Preload("Product").First(&l, "id = ?", objectID).Error; err == nil {
			name = fmt.Sprintf("%s (Product: %s)", l.Name, l.Product.Name)
		}
	case EntityWarehouse:
		var w models.Warehouse
		if err = tx.First(&w, "id = ?", objectID).Error; err == nil {
			name = w.Name
		}
	case EntityPallet:
		var p models.Pallet
		if err = tx.First(&p, "id = ?", objectID).Error; err == nil {
			name = p.Name
		}
	default:
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		placeholder := fmt.Sprintf("Object (%s) ID: %d no longer exists", entityType, objectID)
		return &placeholder
	}
	if err != nil {
		return nil
	}
	return &name
}
