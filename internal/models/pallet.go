package models

import "time"

// Pallet is a physical unit aggregating one or more lots. The warehouse
// reference is nullable: deleting a warehouse detaches its pallets instead of
// deleting them.
type Pallet struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null;unique"`
	WarehouseID *uint  `gorm:"index"`
	Warehouse   *Warehouse
	CreateDate  time.Time `gorm:"index;not null"`
	InDate      *time.Time
	OutDate     *time.Time
	IsOut       bool `gorm:"not null;default:false"`
	Defective   bool `gorm:"not null;default:false"`
}

// PalletLot links a pallet to a lot. The pair is unique.
type PalletLot struct {
	ID       uint `gorm:"primaryKey"`
	PalletID uint `gorm:"not null;uniqueIndex:idx_pallet_lots_pair"`
	Pallet   Pallet
	LotID    uint `gorm:"not null;uniqueIndex:idx_pallet_lots_pair"`
	Lot      Lot
}
