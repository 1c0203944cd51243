package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jar-backend/internal/config"
	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testDomain   = "alpha.localhost"
	testPassword = "password"
)

func newTestConfig() *config.Config {
	return &config.Config{
		HTTPPort:    "0",
		CORSOrigins: "http://localhost:5173",
	}
}

// setupTestApp builds the app against a fresh test database with one tenant
// (alpha, domain alpha.localhost), one user and a membership, and returns the
// app plus a login-issued token.
func setupTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	database.NewTestDB(t)

	tenant := models.Tenant{Name: "Cliente Alpha SAS", SchemaName: "alpha"}
	require.NoError(t, database.DB.Create(&tenant).Error)
	require.NoError(t, database.DB.Create(&models.Domain{
		Domain: testDomain, TenantID: tenant.ID, IsPrimary: true,
	}).Error)

	user := createTestUser(t, "admin")
	require.NoError(t, database.DB.Create(&models.TenantMembership{
		UserID: user.ID, TenantID: tenant.ID, IsActiveForUser: true,
	}).Error)

	app := New(newTestConfig())
	return app, login(t, app, "admin", testPassword)
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/get-token", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	return doJSONHost(t, app, method, testDomain, path, token, body)
}

func doJSONHost(t *testing.T, app *fiber.App, method, host, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "http://"+host+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestGetToken(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/get-token", "", fiber.Map{
		"username": "admin",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token            string `json:"token"`
		UserID           uint   `json:"user_id"`
		Username         string `json:"username"`
		AvailableTenants []struct {
			ID         uint   `json:"id"`
			Name       string `json:"name"`
			SchemaName string `json:"schema_name"`
			AllDomains []struct {
				Domain    string `json:"domain"`
				IsPrimary bool   `json:"is_primary"`
			} `json:"all_domains"`
		} `json:"available_tenants"`
	}
	decode(t, resp, &body)

	require.Len(t, body.Token, 40)
	require.Equal(t, "admin", body.Username)
	require.Len(t, body.AvailableTenants, 1)
	require.Equal(t, "alpha", body.AvailableTenants[0].SchemaName)
	require.Len(t, body.AvailableTenants[0].AllDomains, 1)
	require.Equal(t, testDomain, body.AvailableTenants[0].AllDomains[0].Domain)
	require.True(t, body.AvailableTenants[0].AllDomains[0].IsPrimary)
}

func TestGetTokenIsDurable(t *testing.T) {
	app, first := setupTestApp(t)

	// Logging in again returns the same token, not a new one.
	second := login(t, app, "admin", testPassword)
	require.Equal(t, first, second)
}

func TestGetTokenBadCredentials(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, body := range []fiber.Map{
		{"username": "admin", "password": "wrong"},
		{"username": "nobody", "password": testPassword},
		{"username": "", "password": ""},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/get-token", "", body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/warehouse/products", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/warehouse/products", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownHostRejected(t *testing.T) {
	app, token := setupTestApp(t)

	resp := doJSONHost(t, app, http.MethodGet, "unknown.localhost", "/api/v1/warehouse/products", token, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNonMemberForbidden(t *testing.T) {
	app, memberToken := setupTestApp(t)

	// A product that exists in the tenant.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/warehouse/products", memberToken, fiber.Map{"name": "Flour"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, resp, &created)

	// A valid user with no membership in the tenant.
	createTestUser(t, "outsider")
	outsiderToken := login(t, app, "outsider", testPassword)

	paths := []string{
		"/api/v1/warehouse/products",
		"/api/v1/warehouse/lots",
		"/api/v1/warehouse/warehouses",
		"/api/v1/warehouse/pallets",
		"/api/v1/warehouse/action-logs",
	}
	for _, path := range paths {
		resp := doJSON(t, app, http.MethodGet, path, outsiderToken, nil)
		require.Equalf(t, http.StatusForbidden, resp.StatusCode, "path %s", path)
	}

	// An existing id must behave no differently for a non-member.
	resp = doJSON(t, app, http.MethodGet, productPath(created.ID), outsiderToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// actionLogCount counts audit entries for one entity reference.
func actionLogCount(t *testing.T, action models.ActionType, entityType string, objectID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.DB.Model(&models.ActionLog{}).
		Where("action_type = ? AND entity_type = ? AND object_id = ?", action, entityType, objectID).
		Count(&count).Error)
	return count
}

func totalActionLogs(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.DB.Model(&models.ActionLog{}).Count(&count).Error)
	return count
}

// waitTick keeps create timestamps strictly ordered where a test depends on
// creation order.
func waitTick() {
	time.Sleep(2 * time.Millisecond)
}
