package reports

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

// SetupReportsRoutes sets up the reports routes
func SetupReportsRoutes(app *fiber.App) {
	reports := app.Group("/reports")
	reports.Use(auth.AuthMiddleware)

	reportsAPI := app.Group("/api/reports")
	reportsAPI.Use(auth.AuthMiddleware)

	// Web routes
	reports.Get("/", func(c *fiber.Ctx) error {
		return c.Render("reports", fiber.Map{
			"Title":       "Reports - Student Finance",
			"CurrentPage": "reports",
			"Currency":    config.AppConfig.Currency,
			"user":        c.Locals("user"),
		})
	})

	// API routes
	reportsAPI.Get("/payments-by-grade", func(c *fiber.Ctx) error {
		results, err := database.GetPaymentsByGrade(config.GetDB(), c.Query("date_from"), c.Query("date_to"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payments by grade"})
		}
		return c.JSON(fiber.Map{"results": results})
	})

	reportsAPI.Get("/payments-by-method", func(c *fiber.Ctx) error {
		results, err := database.GetPaymentsByMethod(config.GetDB(), c.Query("date_from"), c.Query("date_to"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payments by method"})
		}
		return c.JSON(fiber.Map{"results": results})
	})

	reportsAPI.Get("/summary", func(c *fiber.Ctx) error {
		summary, err := database.GetReportSummary(config.GetDB(), c.Query("date_from"), c.Query("date_to"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch report summary"})
		}
		return c.JSON(summary)
	})

	reportsAPI.Get("/defaulters", func(c *fiber.Ctx) error {
		threshold := decimal.Zero
		if raw := c.Query("threshold"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil || parsed.IsNegative() {
				return c.Status(400).JSON(fiber.Map{"error": "Invalid threshold"})
			}
			threshold = parsed
		}

		defaulters, err := database.GetDefaulters(config.GetDB(), threshold)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch defaulters"})
		}
		return c.JSON(fiber.Map{
			"defaulters": defaulters,
			"count":      len(defaulters),
		})
	})
}
