package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

// SetupDashboardRoutes sets up the dashboard routes
func SetupDashboardRoutes(app *fiber.App) {
	dashboard := app.Group("/dashboard")
	dashboard.Use(auth.AuthMiddleware)

	dashboardAPI := app.Group("/api/dashboard")
	dashboardAPI.Use(auth.AuthMiddleware)

	// Web routes
	dashboard.Get("/", func(c *fiber.Ctx) error {
		return c.Render("dashboard", fiber.Map{
			"Title":       "Dashboard - Student Finance",
			"CurrentPage": "dashboard",
			"SchoolName":  config.AppConfig.SchoolName,
			"Currency":    config.AppConfig.Currency,
			"user":        c.Locals("user"),
		})
	})

	// API routes
	dashboardAPI.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := database.GetDashboardStats(config.GetDB())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
		}
		return c.JSON(stats)
	})

	dashboardAPI.Get("/payment-trends", func(c *fiber.Ctx) error {
		trends, err := database.GetPaymentTrends(config.GetDB(), c.QueryInt("months", 6))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payment trends"})
		}
		return c.JSON(fiber.Map{"trends": trends})
	})

	dashboardAPI.Get("/recent-activity", auth.RequirePermission(models.CanManageUsers), func(c *fiber.Ctx) error {
		logs, err := database.GetRecentSystemLogs(config.GetDB(), c.QueryInt("limit", 20))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch recent activity"})
		}
		return c.JSON(fiber.Map{"logs": logs})
	})

	dashboardAPI.Get("/payment-calendar/:year/:month", func(c *fiber.Ctx) error {
		year, err := c.ParamsInt("year")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid year"})
		}
		month, err := c.ParamsInt("month")
		if err != nil || month < 1 || month > 12 {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid month"})
		}

		calendar, err := database.GetPaymentCalendar(config.GetDB(), year, month)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payment calendar"})
		}
		return c.JSON(fiber.Map{"calendar": calendar})
	})
}
