package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"sampark-backend/creds"
	"sampark-backend/handlers/apierr"
	"sampark-backend/mailer"
	"sampark-backend/metric"
	mw "sampark-backend/middleware"
	"sampark-backend/models"
	"sampark-backend/store"
)

func Register(g fiber.Router, st store.Store, m mailer.Mailer, loginLimiter fiber.Handler) {
	g.Post("/register", register(st))
	g.Post("/login", loginLimiter, login(st))
	g.Post("/forgot-password", loginLimiter, forgotPassword(st, m))
}

// ---------- Helper Functions ----------

// BcryptHash hashes a plain text password.
func BcryptHash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password cannot be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// BcryptVerify compares a hashed password with a plain text password.
func BcryptVerify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ttlFromEnv parses a duration from an environment variable, or returns a default.
func ttlFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// ---------- /auth/register ----------
func register(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.RegisterRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}

		name := strings.TrimSpace(b.Name)
		email := store.NormalizeEmail(b.Email)
		if name == "" || email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and Name are required")
		}

		a := models.Attendee{
			Name:           name,
			Email:          email,
			Phone:          b.Phone,
			University:     b.University,
			Department:     b.Department,
			Year:           b.Year,
			SelectedEvent:  b.SelectedEvent,
			PosterTheme:    b.PosterTheme,
			TransactionID:  b.TransactionID,
			IEEEMembership: b.IEEEMembership,
			GitHub:         b.GitHub,
			Status:         models.StatusPending,
			Slug:           creds.GenerateSlug(),
		}
		if err := st.CreateAttendee(c.Context(), &a); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fiber.NewError(fiber.StatusConflict, "Email already registered")
			}
			return apierr.From(err)
		}

		metric.Registrations.Inc()
		// Credentials are release-gated behind admin approval, so none are
		// returned here.
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Registration submitted! Please wait for admin approval to receive your credentials.",
		})
	}
}

// ---------- /auth/login ----------
func login(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.LoginRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		loginID := strings.TrimSpace(b.LoginID)
		if loginID == "" || b.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Login ID and password required")
		}

		denied := func() error {
			metric.Logins.WithLabelValues("failure").Inc()
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}

		// The credential email hands out an SMPK login id, but the email
		// address works too.
		var a *models.Attendee
		var err error
		if id, ok := creds.ParseLoginID(loginID); ok {
			a, err = st.GetAttendeeByID(c.Context(), id)
		} else {
			a, err = st.GetAttendeeByEmail(c.Context(), loginID)
		}
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return denied()
			}
			return apierr.From(err)
		}

		// Approval gates login: credentials only exist once an admin has
		// approved the registration, and an unapproved account stays locked
		// even if a hash is somehow present.
		if a.Status != models.StatusApproved || a.PasswordHash == nil ||
			!BcryptVerify(*a.PasswordHash, b.Password) {
			return denied()
		}

		accessTTL := ttlFromEnv("ACCESS_TOKEN_TTL", 12*time.Hour)
		token, err := mw.BuildAccessToken(a.Email, a.Name, accessTTL)
		if err != nil {
			return fmt.Errorf("failed to build access token: %w", err)
		}

		metric.Logins.WithLabelValues("success").Inc()
		return c.JSON(models.LoginResponse{
			AccessToken: token,
			ExpiresIn:   int(accessTTL.Seconds()),
			User: models.UserProjection{
				Name:  a.Name,
				Email: a.Email,
				Phone: a.Phone,
				Slug:  a.Slug,
			},
		})
	}
}

// ---------- /auth/forgot-password ----------
// Passwords are stored hashed, so the old "resend the stored plaintext"
// behavior is impossible. A fresh password is generated, stored and mailed.
func forgotPassword(st store.Store, m mailer.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.ForgotPasswordRequest
		if err := c.BodyParser(&b); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bad JSON")
		}
		email := store.NormalizeEmail(b.Email)
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email is required")
		}

		a, err := st.GetAttendeeByEmail(c.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return apierr.From(err)
		}
		if a.Status != models.StatusApproved {
			return fiber.NewError(fiber.StatusForbidden, "Account not approved yet. Please wait for admin approval.")
		}

		password, err := creds.GeneratePassword()
		if err != nil {
			return err
		}
		hash, err := BcryptHash(password)
		if err != nil {
			return err
		}
		if err := st.SetPasswordHash(c.Context(), a.Email, hash); err != nil {
			return apierr.From(err)
		}
		if err := m.SendCredentials(a.Email, a.Name, creds.LoginID(a.ID), password); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "Failed to send email. Please try again later.")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Credentials sent to your email."})
	}
}
