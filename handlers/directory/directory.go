package directory

import (
	"github.com/gofiber/fiber/v2"

	"sampark-backend/graph"
	"sampark-backend/handlers/apierr"
	"sampark-backend/models"
	"sampark-backend/store"
)

func Register(g fiber.Router, st store.Store) {
	g.Get("/", list(st))
}

// ---------- GET /directory ----------
// One attendee scan plus one accepted-edge scan; per-row connection counts
// come out of the peer-set map, never a query per attendee.
func list(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attendees, err := st.ListAttendees(c.Context())
		if err != nil {
			return apierr.From(err)
		}
		edges, err := st.ListAcceptedEdges(c.Context())
		if err != nil {
			return apierr.From(err)
		}

		peers := graph.PeerSets(edges)
		out := make([]models.DirectoryEntry, 0, len(attendees))
		for _, a := range attendees {
			out = append(out, models.DirectoryEntry{
				ID:            a.ID,
				Name:          a.Name,
				Email:         a.Email,
				SelectedEvent: a.SelectedEvent,
				PosterTheme:   a.PosterTheme,
				Slug:          a.Slug,
				Connections:   len(peers[a.Email]),
			})
		}
		return c.JSON(out)
	}
}
