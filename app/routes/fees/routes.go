package fees

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

// SetupFeesRoutes sets up the fee structure routes
func SetupFeesRoutes(app *fiber.App) {
	fees := app.Group("/fees")
	fees.Use(auth.AuthMiddleware)

	feesAPI := app.Group("/api/fees")
	feesAPI.Use(auth.AuthMiddleware)

	// Web routes
	fees.Get("/", func(c *fiber.Ctx) error {
		return c.Render("fees/list", fiber.Map{
			"Title":       "Fee Structures - Student Finance",
			"CurrentPage": "fees",
			"user":        c.Locals("user"),
		})
	})

	// API routes
	feesAPI.Get("/", func(c *fiber.Ctx) error {
		return GetFeeStructuresAPI(c)
	})

	feesAPI.Get("/total", func(c *fiber.Ctx) error {
		return GetFeeTotalAPI(c)
	})

	feesAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetFeeStructureAPI(c)
	})

	feesAPI.Post("/", auth.RequirePermission(models.CanCreate), func(c *fiber.Ctx) error {
		return CreateFeeStructureAPI(c)
	})

	feesAPI.Put("/:id", auth.RequirePermission(models.CanEdit), func(c *fiber.Ctx) error {
		return UpdateFeeStructureAPI(c)
	})

	feesAPI.Delete("/:id", auth.RequirePermission(models.CanDelete), func(c *fiber.Ctx) error {
		return DeleteFeeStructureAPI(c)
	})
}
