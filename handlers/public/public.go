package public

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/graph"
	"sampark-backend/handlers/apierr"
	"sampark-backend/models"
	"sampark-backend/store"
)

func Register(g fiber.Router, st store.Store) {
	g.Get("/profile/:slug", profileBySlug(st))
}

// ---------- GET /public/profile/:slug ----------
// Shareable profile page for anonymous visitors. The projection carries no
// email and no phone.
func profileBySlug(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := st.GetAttendeeBySlug(c.Context(), c.Params("slug"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Profile not found")
			}
			return apierr.From(err)
		}

		edges, err := st.ListAcceptedEdges(c.Context())
		if err != nil {
			return apierr.From(err)
		}

		return c.JSON(models.PublicProfile{
			Name:          a.Name,
			SelectedEvent: a.SelectedEvent,
			PosterTheme:   a.PosterTheme,
			Slug:          a.Slug,
			GitHub:        a.GitHub,
			LinkedIn:      a.LinkedIn,
			Instagram:     a.Instagram,
			Connections:   graph.Count(edges, a.Email),
		})
	}
}
