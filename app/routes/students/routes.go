package students

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/ledger"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
	"github.com/bkorir-git/Student-finance-management-system/app/services"
)

// SetupStudentsRoutes sets up the students routes
func SetupStudentsRoutes(app *fiber.App) {
	svc := ledger.NewService(ledger.NewPostgresStore(config.GetDB()))
	catalog := services.NewDBCatalog(config.GetDB())

	students := app.Group("/students")
	students.Use(auth.AuthMiddleware)

	studentsAPI := app.Group("/api/students")
	studentsAPI.Use(auth.AuthMiddleware)

	// Web routes
	students.Get("/", func(c *fiber.Ctx) error {
		return c.Render("students/list", fiber.Map{
			"Title":       "Students - Student Finance",
			"CurrentPage": "students",
			"user":        c.Locals("user"),
		})
	})

	// API routes
	studentsAPI.Get("/", func(c *fiber.Ctx) error {
		return GetStudentsAPI(c)
	})

	studentsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetStudentAPI(c)
	})

	studentsAPI.Post("/", auth.RequirePermission(models.CanCreate), func(c *fiber.Ctx) error {
		return CreateStudentAPI(c, svc, catalog)
	})

	studentsAPI.Put("/:id", auth.RequirePermission(models.CanEdit), func(c *fiber.Ctx) error {
		return UpdateStudentAPI(c)
	})

	studentsAPI.Delete("/:id", auth.RequirePermission(models.CanDelete), func(c *fiber.Ctx) error {
		return DeleteStudentAPI(c)
	})

	studentsAPI.Post("/:id/apply-fees", auth.RequirePermission(models.CanEdit), func(c *fiber.Ctx) error {
		return ApplyFeesAPI(c, svc, catalog)
	})

	studentsAPI.Post("/:id/initialize-balance", auth.RequirePermission(models.CanEdit), func(c *fiber.Ctx) error {
		return InitializeBalanceAPI(c, svc, catalog)
	})

	studentsAPI.Get("/:id/ledger", func(c *fiber.Ctx) error {
		return GetStudentLedgerAPI(c, svc)
	})
}
