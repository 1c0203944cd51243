package models

import "time"

type Warehouse struct {
	ID         uint    `gorm:"primaryKey"`
	Name       string  `gorm:"size:255;not null;unique"`
	Address    *string `gorm:"size:255"`
	CreateDate time.Time `gorm:"index;not null"`
}
