package admin

import (
	"crypto/subtle"
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/creds"
	hAuth "sampark-backend/handlers/auth"
	"sampark-backend/mailer"
	"sampark-backend/metric"
	"sampark-backend/models"
	"sampark-backend/store"
)

func Register(g fiber.Router, st store.Store, m mailer.Mailer) {
	g.Post("/approve", approve(st, m))
	g.Post("/backfill-slugs", backfillSlugs(st))
}

// checkAdminPassword compares the supplied password against ADMIN_PASSWORD
// in constant time. The contract is still "exact match grants access".
func checkAdminPassword(supplied string) error {
	expected := os.Getenv("ADMIN_PASSWORD")
	if expected == "" {
		return fiber.NewError(fiber.StatusInternalServerError, "ADMIN_PASSWORD not configured")
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return nil
}

// stepError labels which step of a multi-step admin action failed; the
// approve flow is not atomic and a blanket error would hide how far it got.
func stepError(step string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return fiber.NewError(status, "Approval failed at step: "+step)
}

// ---------- /admin/approve ----------
// Approves the registration, issues fresh credentials (the plaintext exists
// only inside this request; the store keeps a bcrypt hash) and emails them.
func approve(st store.Store, m mailer.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.ApproveRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		if err := checkAdminPassword(b.AdminPassword); err != nil {
			return err
		}
		email := store.NormalizeEmail(b.Email)
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email is required")
		}

		a, err := st.GetAttendeeByEmail(c.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Attendee not found")
			}
			return stepError("lookup", err)
		}

		if err := st.ApproveAttendee(c.Context(), a.Email); err != nil {
			return stepError("status update", err)
		}

		password, err := creds.GeneratePassword()
		if err != nil {
			return stepError("credential generation", err)
		}
		hash, err := hAuth.BcryptHash(password)
		if err != nil {
			return stepError("credential generation", err)
		}
		if err := st.SetPasswordHash(c.Context(), a.Email, hash); err != nil {
			return stepError("credential storage", err)
		}

		if err := m.SendCredentials(a.Email, a.Name, creds.LoginID(a.ID), password); err != nil {
			// Status is already Approved at this point; the admin can retry
			// delivery via forgot-password once the mailer recovers.
			return fiber.NewError(fiber.StatusBadGateway, "Approval failed at step: credential email")
		}

		metric.Approvals.Inc()
		return c.JSON(fiber.Map{"success": true})
	}
}

// ---------- /admin/backfill-slugs ----------
// Assigns slugs to rows imported before slugs existed.
func backfillSlugs(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.BackfillSlugsRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		if err := checkAdminPassword(b.AdminPassword); err != nil {
			return err
		}

		updated, err := st.BackfillSlugs(c.Context())
		if err != nil {
			return stepError("slug backfill", err)
		}
		return c.JSON(fiber.Map{"success": true, "updated": updated})
	}
}
