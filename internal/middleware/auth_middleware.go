package middleware

import (
	"strings"

	"go-storefront-api/internal/repository"
	"go-storefront-api/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the httpOnly cookie the login handler sets.
const SessionCookie = "session_token"

// RequireAuth validates the session (cookie first, bearer header as a
// fallback for non-browser clients) and stashes the user identity in the
// request context. Absent or stale sessions get a 401; the SPA treats
// that as a redirect to /login.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing session token"})
		}

		claims, err := token.Parse(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired session"})
		}

		// Strict session check against the DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in elsewhere)"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.Name)

		return c.Next()
	}
}
