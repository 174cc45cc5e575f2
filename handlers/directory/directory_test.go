package directory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"sampark-backend/creds"
	"sampark-backend/handlers/directory"
	"sampark-backend/models"
	"sampark-backend/store"
)

func newApp(st store.Store) *fiber.App {
	app := fiber.New()
	directory.Register(app.Group("/directory"), st)
	return app
}

func seed(t *testing.T, st store.Store, name, email string) {
	t.Helper()
	require.NoError(t, st.CreateAttendee(context.Background(), &models.Attendee{
		Name: name, Email: email, Slug: creds.GenerateSlug(), Status: models.StatusApproved,
	}))
}

func accept(t *testing.T, st store.Store, source, target string) {
	t.Helper()
	ctx := context.Background()
	_, err := st.CreateConnection(ctx, &models.Connection{SourceEmail: source, TargetEmail: target})
	require.NoError(t, err)
	require.NoError(t, st.RespondConnection(ctx, source, target, models.ConnectionAccepted))
}

func TestDirectoryWithConnectionCounts(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "Alice", "a@x.com")
	seed(t, st, "Bob", "b@x.com")
	seed(t, st, "Cara", "c@x.com")
	accept(t, st, "a@x.com", "b@x.com")
	accept(t, st, "c@x.com", "a@x.com")
	app := newApp(st)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/directory/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.DirectoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 3)

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Email] = e.Connections
	}
	require.Equal(t, 2, counts["a@x.com"])
	require.Equal(t, 1, counts["b@x.com"])
	require.Equal(t, 1, counts["c@x.com"])
}

type downStore struct {
	store.Store
}

func (downStore) ListAttendees(context.Context) ([]models.Attendee, error) {
	return nil, store.ErrUnavailable
}

func TestDirectorySurfacesStoreOutage(t *testing.T) {
	app := newApp(downStore{store.NewMemory()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/directory/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode,
		"an outage must not masquerade as an empty directory")
}
