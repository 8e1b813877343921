package payments

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

// SetupPaymentsRoutes sets up the payments routes
func SetupPaymentsRoutes(app *fiber.App) {
	payments := app.Group("/payments")
	payments.Use(auth.AuthMiddleware)

	paymentsAPI := app.Group("/api/payments")
	paymentsAPI.Use(auth.AuthMiddleware)

	// Web routes
	payments.Get("/", func(c *fiber.Ctx) error {
		return c.Render("payments/list", fiber.Map{
			"Title":       "Payments - Student Finance",
			"CurrentPage": "payments",
			"user":        c.Locals("user"),
		})
	})

	payments.Get("/:id/receipt", func(c *fiber.Ctx) error {
		return ShowReceiptPage(c)
	})

	// API routes
	paymentsAPI.Get("/", func(c *fiber.Ctx) error {
		return GetPaymentsAPI(c)
	})

	paymentsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetPaymentAPI(c)
	})

	paymentsAPI.Get("/:id/receipt", func(c *fiber.Ctx) error {
		return GetReceiptAPI(c)
	})

	paymentsAPI.Post("/", auth.RequirePermission(models.CanCreate), func(c *fiber.Ctx) error {
		return CreatePaymentAPI(c)
	})

	paymentsAPI.Delete("/:id", auth.RequirePermission(models.CanDelete), func(c *fiber.Ctx) error {
		return DeletePaymentAPI(c)
	})
}
