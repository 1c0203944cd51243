package audit

import (
	"testing"
	"time"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	database.NewTestDB(t)

	userID := uint(7)
	require.NoError(t, Record(database.DB, LogOptions{
		UserID:      &userID,
		Action:      models.ActionCreate,
		EntityType:  EntityProduct,
		EntityID:    42,
		Description: "Product 'Flour' created.",
	}))

	var entry models.ActionLog
	require.NoError(t, database.DB.First(&entry).Error)
	require.Equal(t, models.ActionCreate, entry.ActionType)
	require.Equal(t, EntityProduct, entry.EntityType)
	require.Equal(t, uint(42), entry.ObjectID)
	require.NotNil(t, entry.UserID)
	require.Equal(t, userID, *entry.UserID)
	require.WithinDuration(t, time.Now(), entry.Timestamp, time.Minute)
}

func TestAffectedObjectString(t *testing.T) {
	database.NewTestDB(t)

	product := models.Product{Name: "Flour", CreateDate: time.Now()}
	require.NoError(t, database.DB.Create(&product).Error)
	lot := models.Lot{Name: "Lot A", ProductID: product.ID, CreateDate: time.Now()}
	require.NoError(t, database.DB.Create(&lot).Error)

	got := AffectedObjectString(database.DB, EntityProduct, product.ID)
	require.NotNil(t, got)
	require.Equal(t, "Flour", *got)

	got = AffectedObjectString(database.DB, EntityLot, lot.ID)
	require.NotNil(t, got)
	require.Equal(t, "Lot A (Product: Flour)", *got)

	// Deleted rows render a placeholder rather than failing.
	require.NoError(t, database.DB.Delete(&lot).Error)
	got = AffectedObjectString(database.DB, EntityLot, lot.ID)
	require.NotNil(t, got)
	require.Contains(t, *got, "no longer exists")

	require.Nil(t, AffectedObjectString(database.DB, "unknown", 1))
}
