package middleware

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Claims structure for JWT. The attendee's email is the subject; the name
// rides along so the UI can greet without a lookup.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JwtGuard is a middleware to validate JWT access tokens.
func JwtGuard() fiber.Handler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET not configured")
		}
	}

	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing or malformed bearer token")
		}
		tkn, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !tkn.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		c.Locals("claims", tkn.Claims.(*Claims))
		return c.Next()
	}
}

// BuildAccessToken Helper to build JWT access tokens.
func BuildAccessToken(email, name string, ttl time.Duration) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetEmailFromClaims extracts the attendee email from the JWT claims in the
// Fiber context.
func GetEmailFromClaims(c *fiber.Ctx) (string, error) {
	cls, ok := c.Locals("claims").(*Claims)
	if !ok || cls == nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "user claims not found")
	}
	return cls.Email, nil
}
