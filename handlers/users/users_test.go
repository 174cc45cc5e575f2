package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"sampark-backend/creds"
	"sampark-backend/handlers/users"
	mw "sampark-backend/middleware"
	"sampark-backend/models"
	"sampark-backend/store"
)

func newApp(st store.Store) *fiber.App {
	app := fiber.New()
	users.Register(app.Group("/users"), st, mw.JwtGuard())
	return app
}

func seed(t *testing.T, st store.Store, name, email string) *models.Attendee {
	t.Helper()
	a := &models.Attendee{Name: name, Email: email, Slug: creds.GenerateSlug(), Status: models.StatusApproved}
	require.NoError(t, st.CreateAttendee(context.Background(), a))
	return a
}

func token(t *testing.T, email, name string) string {
	t.Helper()
	tok, err := mw.BuildAccessToken(email, name, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, app *fiber.App, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func searchNames(t *testing.T, app *fiber.App, q string) []string {
	t.Helper()
	resp := do(t, app, http.MethodGet, "/users/search?q="+url.QueryEscape(q), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Results []models.SearchResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	names := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		names = append(names, r.Name)
	}
	return names
}

func TestSearchSubstringMatch(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "Alice", "alice@x.com")
	seed(t, st, "Bob", "bob@x.com")
	seed(t, st, "Salim", "salim@x.com")
	app := newApp(st)

	// "ali" hits Alice by name and Salim by email, never Bob.
	require.ElementsMatch(t, []string{"Alice", "Salim"}, searchNames(t, app, "ali"))
	require.ElementsMatch(t, []string{"Alice", "Salim"}, searchNames(t, app, "ALI"))
}

func TestSearchShortQueryReturnsSample(t *testing.T) {
	st := store.NewMemory()
	for i := 0; i < 30; i++ {
		seed(t, st, "Person", string(rune('a'+i%26))+string(rune('a'+i/26))+"@x.com")
	}
	app := newApp(st)

	names := searchNames(t, app, "")
	require.LessOrEqual(t, len(names), 20)
	require.NotEmpty(t, names)

	names = searchNames(t, app, "x")
	require.LessOrEqual(t, len(names), 20, "single-char queries serve the discover view too")
}

func TestSearchResultsOmitEmail(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "Alice", "alice@x.com")
	app := newApp(st)

	resp := do(t, app, http.MethodGet, "/users/search?q=alice", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw map[string][]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Len(t, raw["results"], 1)
	require.NotContains(t, raw["results"][0], "email")
	require.NotContains(t, raw["results"][0], "phone")
}

func TestGetProfileRequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	seed(t, st, "Alice", "alice@x.com")
	app := newApp(st)

	resp := do(t, app, http.MethodGet, "/users/alice@x.com", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/users/"+url.PathEscape("alice@x.com"), token(t, "bob@x.com", "Bob"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.Equal(t, "Alice", p.Name)
	require.Equal(t, 0, p.Connections)
}

func TestConnectFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	alice := seed(t, st, "Alice", "alice@x.com")
	seed(t, st, "Bob", "bob@x.com")
	app := newApp(st)
	ctx := context.Background()

	typed := "Ali C."
	body := models.ConnectRequest{Action: "connect", SourceName: &typed}

	// Request A -> B twice: second one is a no-op success.
	resp := do(t, app, http.MethodPost, "/users/bob@x.com", token(t, alice.Email, alice.Name), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, app, http.MethodPost, "/users/bob@x.com", token(t, alice.Email, alice.Name), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	edges, err := st.ListConnections(ctx, "bob@x.com")
	require.NoError(t, err)
	require.Len(t, edges, 1, "duplicate requests must not create duplicate edges")
	require.Equal(t, models.ConnectionPending, edges[0].Status)
	require.NotNil(t, edges[0].SourceName)
	require.Equal(t, "Alice", *edges[0].SourceName,
		"the requester's stored profile name overrides the typed one")
}

func TestConnectToSelfOrUnknownTarget(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	alice := seed(t, st, "Alice", "alice@x.com")
	app := newApp(st)

	body := models.ConnectRequest{Action: "connect"}
	resp := do(t, app, http.MethodPost, "/users/alice@x.com", token(t, alice.Email, alice.Name), body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/users/ghost@x.com", token(t, alice.Email, alice.Name), body)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProfileOnlySelf(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	alice := seed(t, st, "Alice", "alice@x.com")
	seed(t, st, "Bob", "bob@x.com")
	app := newApp(st)

	github := "https://github.com/alice"
	upd := models.UpdateProfileRequest{GitHub: &github}

	resp := do(t, app, http.MethodPost, "/users/bob@x.com", token(t, alice.Email, alice.Name), upd)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/users/alice@x.com", token(t, alice.Email, alice.Name), upd)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.NotNil(t, p.GitHub)
	require.Equal(t, github, *p.GitHub)
}

func TestListConnectionsAnnotated(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	alice := seed(t, st, "Alice", "alice@x.com")
	bob := seed(t, st, "Bob", "bob@x.com")
	app := newApp(st)
	ctx := context.Background()

	_, err := st.CreateConnection(ctx, &models.Connection{SourceEmail: bob.Email, TargetEmail: alice.Email})
	require.NoError(t, err)

	// Another attendee cannot read Alice's connections.
	resp := do(t, app, http.MethodGet, "/users/alice@x.com/connections", token(t, bob.Email, bob.Name), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/users/alice@x.com/connections", token(t, alice.Email, alice.Name), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var edges []models.AnnotatedConnection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&edges))
	require.Len(t, edges, 1)
	require.Equal(t, models.DirectionIncoming, edges[0].Direction)
	require.Equal(t, "Bob", edges[0].PeerName)
}
