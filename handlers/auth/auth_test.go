package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"sampark-backend/creds"
	"sampark-backend/handlers/auth"
	"sampark-backend/models"
	"sampark-backend/store"
)

type recorderMailer struct {
	to, name, loginID, password string
}

func (r *recorderMailer) SendCredentials(to, name, loginID, password string) error {
	r.to, r.name, r.loginID, r.password = to, name, loginID, password
	return nil
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

func newApp(st store.Store, m *recorderMailer) *fiber.App {
	app := fiber.New()
	auth.Register(app.Group("/auth"), st, m, passthrough)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRegisterRequiresNameAndEmail(t *testing.T) {
	app := newApp(store.NewMemory(), &recorderMailer{})

	resp := postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Alice"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/auth/register", models.RegisterRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterCreatesPendingAttendeeWithSlug(t *testing.T) {
	st := store.NewMemory()
	app := newApp(st, &recorderMailer{})

	resp := postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Alice", Email: "A@X.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["success"])
	require.NotContains(t, body, "password", "credentials are release-gated behind approval")

	a, err := st.GetAttendeeByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, a.Status)
	require.NotEmpty(t, a.Slug)
	require.Nil(t, a.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newApp(store.NewMemory(), &recorderMailer{})

	resp := postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Alice", Email: "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Imposter", Email: "a@x.com"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginBeforeApprovalFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	app := newApp(st, &recorderMailer{})

	resp := postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Alice", Email: "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// No credentials exist yet, and even a correct password would be
	// rejected while the account is Pending.
	hash, err := auth.BcryptHash("RXKQ42")
	require.NoError(t, err)
	require.NoError(t, st.SetPasswordHash(context.Background(), "a@x.com", hash))

	resp = postJSON(t, app, "/auth/login", models.LoginRequest{LoginID: "a@x.com", Password: "RXKQ42"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginAfterApproval(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	st := store.NewMemory()
	app := newApp(st, &recorderMailer{})
	ctx := context.Background()

	resp := postJSON(t, app, "/auth/register", models.RegisterRequest{Name: "Alice", Email: "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hash, err := auth.BcryptHash("RXKQ42")
	require.NoError(t, err)
	require.NoError(t, st.SetPasswordHash(ctx, "a@x.com", hash))
	require.NoError(t, st.ApproveAttendee(ctx, "a@x.com"))

	resp = postJSON(t, app, "/auth/login", models.LoginRequest{LoginID: " A@X.com ", Password: "RXKQ42"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "Alice", body.User.Name)
	require.Equal(t, "a@x.com", body.User.Email)
	require.NotEmpty(t, body.User.Slug)

	// The SMPK id from the credential email works as well.
	a, err := st.GetAttendeeByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	resp = postJSON(t, app, "/auth/login", models.LoginRequest{LoginID: creds.LoginID(a.ID), Password: "RXKQ42"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password stays a generic 401.
	resp = postJSON(t, app, "/auth/login", models.LoginRequest{LoginID: "a@x.com", Password: "WRONG1"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestForgotPassword(t *testing.T) {
	st := store.NewMemory()
	m := &recorderMailer{}
	app := newApp(st, m)
	ctx := context.Background()

	resp := postJSON(t, app, "/auth/forgot-password", models.ForgotPasswordRequest{Email: "ghost@x.com"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, st.CreateAttendee(ctx, &models.Attendee{
		Name: "Alice", Email: "a@x.com", Slug: "slug-a", Status: models.StatusPending,
	}))

	resp = postJSON(t, app, "/auth/forgot-password", models.ForgotPasswordRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "unapproved accounts get no credentials")

	require.NoError(t, st.ApproveAttendee(ctx, "a@x.com"))
	resp = postJSON(t, app, "/auth/forgot-password", models.ForgotPasswordRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "a@x.com", m.to)
	require.Len(t, m.password, 6)

	// The freshly mailed password matches the stored hash.
	a, err := st.GetAttendeeByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, a.PasswordHash)
	require.True(t, auth.BcryptVerify(*a.PasswordHash, m.password))
}
