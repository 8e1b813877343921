package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public routes
	auth.Get("/login", ShowLoginPage)
	auth.Post("/login", LoginAPI)
	auth.Post("/logout", LogoutAPI)

	// Protected routes
	auth.Use(AuthMiddleware)
	auth.Get("/profile", ShowProfilePage)
	auth.Post("/change-password", ChangePasswordAPI)
}

func ShowLoginPage(c *fiber.Ctx) error {
	// Check if already logged in
	if tokenString := c.Cookies("jwt_token"); tokenString != "" {
		if _, err := ValidateJWT(tokenString); err == nil {
			return c.Redirect("/dashboard")
		}
	}

	return c.Render("auth/login", fiber.Map{
		"Title": "Login - Student Finance",
	}, "")
}

func ShowProfilePage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	return c.Render("auth/profile", fiber.Map{
		"Title":       "Profile - Student Finance",
		"CurrentPage": "profile",
		"user":        user,
		"Username":    user.Username,
		"FullName":    user.FullName,
		"Role":        string(user.Role),
	})
}

// AuthMiddleware validates JWT and sets user context
func AuthMiddleware(c *fiber.Ctx) error {
	// Get JWT token from cookie or Authorization header
	tokenString := c.Cookies("jwt_token")
	if tokenString == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	isAPIRequest := strings.HasPrefix(c.Path(), "/api/")

	if tokenString == "" {
		if isAPIRequest {
			return c.Status(401).JSON(fiber.Map{"error": "No token found"})
		}
		return c.Redirect("/auth/login")
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		if isAPIRequest {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
		}
		return c.Redirect("/auth/login")
	}

	user := &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		FullName: claims.FullName,
		Role:     claims.Role,
		IsActive: true,
	}

	c.Locals("user_id", user.ID)
	c.Locals("user_role", user.Role)
	c.Locals("user", user)

	return c.Next()
}

// RequirePermission checks the static capability table for the user's role
func RequirePermission(capability models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if ok && user.Role.Can(capability) {
			return c.Next()
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
		}

		return c.Status(403).Render("error", fiber.Map{
			"Title":        "Access Forbidden - Student Finance",
			"CurrentPage":  "",
			"ErrorCode":    "403",
			"ErrorTitle":   "Access Forbidden",
			"ErrorMessage": "You don't have permission to access this resource.",
			"user":         c.Locals("user"),
		})
	}
}

// CurrentActor returns the authenticated user's id for ledger
// attribution, or nil when the change is system-initiated.
func CurrentActor(c *fiber.Ctx) *string {
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		return &userID
	}
	return nil
}
