package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	Email        string `gorm:"size:254"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken is the durable opaque login token. One token per user: logging in
// again returns the existing key instead of minting a new one.
type AuthToken struct {
	Key       string `gorm:"primaryKey;size:40"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User
	CreatedAt time.Time
}
