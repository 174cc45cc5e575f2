package config

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/models"
)

func Register(g fiber.Router) {
	g.Get("/links", links())
}

// ---------- GET /config/links ----------
func links() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.ExternalLinks{
			RegistrationForm: os.Getenv("REGISTRATION_FORM_URL"),
			WhatsAppGroup:    os.Getenv("WHATSAPP_GROUP_URL"),
		})
	}
}
