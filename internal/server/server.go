package server

import (
	"strings"

	"jar-backend/internal/audit"
	"jar-backend/internal/auth"
	"jar-backend/internal/config"
	"jar-backend/internal/logger"
	"jar-backend/internal/tenant"
	"jar-backend/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

// New assembles the app: error handling, CORS, request logging, and the full
// route table. Separated from main so tests can mount the same app.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logger.Get().Error("unexpected error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(RequestID())
	app.Use(RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Public: token issuance.
	api.Post("/get-token", auth.GetTokenHandler())

	// Everything below requires a token, a tenant resolved from the request
	// host, and a membership in that tenant.
	wh := api.Group("/warehouse")
	wh.Use(auth.TokenMiddleware())
	wh.Use(tenant.ResolveTenant())
	wh.Use(tenant.RequireMembership())

	wh.Get("/products", warehouse.ListProductsHandler())
	wh.Post("/products", warehouse.CreateProductHandler())
	wh.Get("/products/:id", warehouse.GetProductHandler())
	wh.Put("/products/:id", warehouse.UpdateProductHandler())
	wh.Patch("/products/:id", warehouse.UpdateProductHandler())
	wh.Delete("/products/:id", warehouse.DeleteProductHandler())

	wh.Get("/lots", warehouse.ListLotsHandler())
	wh.Post("/lots", warehouse.CreateLotHandler())
	wh.Get("/lots/:id", warehouse.GetLotHandler())
	wh.Put("/lots/:id", warehouse.UpdateLotHandler())
	wh.Patch("/lots/:id", warehouse.UpdateLotHandler())
	wh.Delete("/lots/:id", warehouse.DeleteLotHandler())

	wh.Get("/warehouses", warehouse.ListWarehousesHandler())
	wh.Post("/warehouses", warehouse.CreateWarehouseHandler())
	wh.Get("/warehouses/:id", warehouse.GetWarehouseHandler())
	wh.Put("/warehouses/:id", warehouse.UpdateWarehouseHandler())
	wh.Patch("/warehouses/:id", warehouse.UpdateWarehouseHandler())
	wh.Delete("/warehouses/:id", warehouse.DeleteWarehouseHandler())
	wh.Get("/warehouses/:id/pallets-by-lot", warehouse.PalletsByLotHandler())

	wh.Get("/pallets", warehouse.ListPalletsHandler())
	wh.Post("/pallets", warehouse.CreatePalletHandler())
	wh.Get("/pallets/:id", warehouse.GetPalletHandler())
	wh.Put("/pallets/:id", warehouse.UpdatePalletHandler())
	wh.Patch("/pallets/:id", warehouse.UpdatePalletHandler())
	wh.Delete("/pallets/:id", warehouse.DeletePalletHandler())

	// Read-only audit trail.
	wh.Get("/action-logs", audit.ListActionLogsHandler())
	wh.Get("/action-logs/:id", audit.GetActionLogHandler())

	return app
}
