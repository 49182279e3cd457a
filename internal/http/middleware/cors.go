package middleware

import "github.com/gofiber/fiber/v2"

// SetCORS writes permissive cross-origin headers on the response. The
// dashboard frontend is served from a different origin than the API and the
// upload gateway, so every endpoint answers with a wildcard origin.
func SetCORS(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
}

// CORS is a middleware that applies permissive cross-origin headers to all
// responses and short-circuits preflight OPTIONS requests with 200.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		SetCORS(c)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}
