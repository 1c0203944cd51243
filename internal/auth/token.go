package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"gorm.io/gorm"
)

func generateKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateToken returns the user's durable token, minting one on first
// login. Re-authenticating always yields the same key.
func GetOrCreateToken(userID uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := database.DB.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}
	token = models.AuthToken{Key: key, UserID: userID}
	if err := database.DB.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}
