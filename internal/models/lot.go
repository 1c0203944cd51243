package models

import "time"

// Lot is a batch of a single product. Deleting the product deletes its lots.
type Lot struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:255;not null;unique"`
	ProductID  uint   `gorm:"index;not null"`
	Product    Product
	CreateDate time.Time `gorm:"index;not null"`
}
