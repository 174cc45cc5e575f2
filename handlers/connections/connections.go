package connections

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/handlers/apierr"
	"sampark-backend/metric"
	mw "sampark-backend/middleware"
	"sampark-backend/models"
	"sampark-backend/store"
)

func Register(g fiber.Router, st store.Store, jwtGuard fiber.Handler) {
	g.Post("/respond", jwtGuard, respond(st))
	g.Get("/status", jwtGuard, status(st))
}

// ---------- POST /connections/respond ----------
// Only the edge's target may accept or reject. Pending is the only state a
// response can leave; Accepted and Rejected are terminal.
func respond(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.RespondRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		if b.Decision != models.ConnectionAccepted && b.Decision != models.ConnectionRejected {
			return fiber.NewError(fiber.StatusBadRequest, "Decision must be Accepted or Rejected")
		}
		source := store.NormalizeEmail(b.SourceEmail)
		target := store.NormalizeEmail(b.TargetEmail)
		if source == "" || target == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Source and target emails required")
		}

		callerEmail, err := mw.GetEmailFromClaims(c)
		if err != nil {
			return err
		}
		if callerEmail != target {
			return fiber.NewError(fiber.StatusForbidden, "Only the request's recipient can respond")
		}

		if err := st.RespondConnection(c.Context(), source, target, b.Decision); err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "No such connection request")
			case errors.Is(err, store.ErrConflict):
				return fiber.NewError(fiber.StatusConflict, "Request already responded to")
			}
			return apierr.From(err)
		}

		metric.ConnectionResponses.WithLabelValues(string(b.Decision)).Inc()
		return c.JSON(fiber.Map{"success": true})
	}
}

// ---------- GET /connections/status?source=&target= ----------
// Reports the edge status between two attendees in either direction, or
// "None" when no edge exists. An absent edge is a normal answer here, not
// an error.
func status(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		source := store.NormalizeEmail(c.Query("source"))
		target := store.NormalizeEmail(c.Query("target"))
		if source == "" || target == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Source and target emails required")
		}

		edge, err := st.ConnectionBetween(c.Context(), source, target)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(fiber.Map{"status": models.ConnectionNone})
			}
			return apierr.From(err)
		}
		return c.JSON(fiber.Map{"status": edge.Status})
	}
}
