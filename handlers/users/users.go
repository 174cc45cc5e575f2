package users

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/graph"
	"sampark-backend/handlers/apierr"
	"sampark-backend/metric"
	mw "sampark-backend/middleware"
	"sampark-backend/models"
	"sampark-backend/store"
)

// Register mounts routes under /users. The :id parameter is the attendee's
// email (URL-encoded by clients).
func Register(g fiber.Router, st store.Store, jwtGuard fiber.Handler) {
	// Static path before the :id parameter routes.
	g.Get("/search", search(st))

	g.Get("/:id", jwtGuard, getProfile(st))
	g.Post("/:id", jwtGuard, postProfile(st))
	g.Get("/:id/connections", jwtGuard, listConnections(st))
}

func paramEmail(c *fiber.Ctx) string {
	raw := c.Params("id")
	if dec, err := url.QueryUnescape(raw); err == nil {
		raw = dec
	}
	return store.NormalizeEmail(raw)
}

// ---------- GET /users/search ----------
// A query shorter than 2 chars serves the "discover people" view: a random
// sample of up to 20. Otherwise: case-insensitive substring match on name
// or email, capped at 10. Results never include email or phone.
func search(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))

		var (
			attendees []models.Attendee
			err       error
		)
		if len(q) < 2 {
			attendees, err = st.SampleAttendees(c.Context(), 20)
		} else {
			attendees, err = st.SearchAttendees(c.Context(), q, 10)
		}
		if err != nil {
			return apierr.From(err)
		}

		results := make([]models.SearchResult, 0, len(attendees))
		for _, a := range attendees {
			results = append(results, models.SearchResult{
				Name:          a.Name,
				SelectedEvent: a.SelectedEvent,
				Slug:          a.Slug,
			})
		}
		return c.JSON(fiber.Map{"results": results})
	}
}

// ---------- GET /users/:id ----------
func getProfile(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := paramEmail(c)

		a, err := st.GetAttendeeByEmail(c.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return apierr.From(err)
		}

		edges, err := st.ListAcceptedEdges(c.Context())
		if err != nil {
			return apierr.From(err)
		}

		return c.JSON(profileOf(a, graph.Count(edges, a.Email)))
	}
}

// ---------- POST /users/:id ----------
// A body carrying action=connect routes into the connection-request flow;
// anything else is a self-service profile update.
func postProfile(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetEmail := paramEmail(c)

		var probe models.ConnectRequest
		if err := c.BodyParser(&probe); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		if probe.Action == "connect" {
			return connect(c, st, targetEmail, probe)
		}
		return updateProfile(c, st, targetEmail)
	}
}

func connect(c *fiber.Ctx, st store.Store, targetEmail string, b models.ConnectRequest) error {
	sourceEmail, err := mw.GetEmailFromClaims(c)
	if err != nil {
		return err
	}
	if sourceEmail == targetEmail {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot connect to yourself")
	}
	if _, err := st.GetAttendeeByEmail(c.Context(), targetEmail); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return apierr.From(err)
	}

	// The requester's stored profile supplies the canonical display name;
	// a client-typed name is only a fallback.
	sourceName := b.SourceName
	sourcePhone := b.SourcePhone
	if src, err := st.GetAttendeeByEmail(c.Context(), sourceEmail); err == nil {
		sourceName = &src.Name
		if src.Phone != nil {
			sourcePhone = src.Phone
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return apierr.From(err)
	}

	edge := models.Connection{
		SourceEmail: sourceEmail,
		TargetEmail: targetEmail,
		SourceName:  sourceName,
		SourcePhone: sourcePhone,
		Note:        b.Note,
	}
	created, err := st.CreateConnection(c.Context(), &edge)
	if err != nil {
		return apierr.From(err)
	}
	if created {
		metric.ConnectionRequests.Inc()
	}
	// A repeated request for the same pair is a no-op success.
	return c.JSON(fiber.Map{"success": true, "created": created})
}

func updateProfile(c *fiber.Ctx, st store.Store, targetEmail string) error {
	callerEmail, err := mw.GetEmailFromClaims(c)
	if err != nil {
		return err
	}
	if callerEmail != targetEmail {
		return fiber.NewError(fiber.StatusForbidden, "Can only update your own profile")
	}

	var b models.UpdateProfileRequest
	if err := c.BodyParser(&b); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
	}
	if b.Name != nil && strings.TrimSpace(*b.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
	}

	if err := st.UpdateAttendeeProfile(c.Context(), targetEmail, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found for update")
		}
		return apierr.From(err)
	}

	a, err := st.GetAttendeeByEmail(c.Context(), targetEmail)
	if err != nil {
		return apierr.From(err)
	}
	edges, err := st.ListAcceptedEdges(c.Context())
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(profileOf(a, graph.Count(edges, a.Email)))
}

// ---------- GET /users/:id/connections ----------
// Lists every edge touching the user, annotated with direction and the
// other party's resolved name, newest first. Connections are private to
// their owner.
func listConnections(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := paramEmail(c)

		callerEmail, err := mw.GetEmailFromClaims(c)
		if err != nil {
			return err
		}
		if callerEmail != email {
			return fiber.NewError(fiber.StatusForbidden, "Can only view your own connections")
		}

		edges, err := st.ListConnections(c.Context(), email)
		if err != nil {
			return apierr.From(err)
		}
		attendees, err := st.ListAttendees(c.Context())
		if err != nil {
			return apierr.From(err)
		}
		nameByEmail := make(map[string]string, len(attendees))
		for _, a := range attendees {
			nameByEmail[a.Email] = a.Name
		}

		return c.JSON(graph.Annotate(edges, email, nameByEmail))
	}
}

func profileOf(a *models.Attendee, count int) models.Profile {
	return models.Profile{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		University:     a.University,
		Department:     a.Department,
		Year:           a.Year,
		SelectedEvent:  a.SelectedEvent,
		PosterTheme:    a.PosterTheme,
		TransactionID:  a.TransactionID,
		IEEEMembership: a.IEEEMembership,
		Slug:           a.Slug,
		GitHub:         a.GitHub,
		LinkedIn:       a.LinkedIn,
		Instagram:      a.Instagram,
		Connections:    count,
	}
}
