package models

import "time"

type Product struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:255;not null;unique"`
	CreateDate time.Time `gorm:"index;not null"`
}
