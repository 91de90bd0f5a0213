package middleware

import "github.com/gofiber/fiber/v2"

// Security sets conservative headers for an API that is only ever called by
// the POS client, never rendered in a browser frame.
func Security() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}
