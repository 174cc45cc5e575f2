package health

import (
	"github.com/gofiber/fiber/v2"

	"sampark-backend/store"
)

func Health(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := st.Ping(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "store unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok", "server": "Sampark 2026 Backend"})
	}
}
