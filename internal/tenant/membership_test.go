package tenant

import (
	"testing"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestIsMember(t *testing.T) {
	database.NewTestDB(t)

	alpha := models.Tenant{Name: "Cliente Alpha SAS", SchemaName: "alpha"}
	require.NoError(t, database.DB.Create(&alpha).Error)
	beta := models.Tenant{Name: "Cliente Beta SAS", SchemaName: "beta"}
	require.NoError(t, database.DB.Create(&beta).Error)

	user := models.User{Username: "admin", PasswordHash: "x"}
	require.NoError(t, database.DB.Create(&user).Error)
	require.NoError(t, database.DB.Create(&models.TenantMembership{
		UserID: user.ID, TenantID: alpha.ID, IsActiveForUser: true,
	}).Error)

	require.True(t, IsMember(user.ID, alpha.ID))
	require.False(t, IsMember(user.ID, beta.ID))
	require.False(t, IsMember(999, alpha.ID))

	// Dropping the membership takes effect on the next check.
	require.NoError(t, database.DB.
		Where("user_id = ? AND tenant_id = ?", user.ID, alpha.ID).
		Delete(&models.TenantMembership{}).Error)
	require.False(t, IsMember(user.ID, alpha.ID))
}
