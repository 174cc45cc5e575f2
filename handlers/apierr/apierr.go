// Package apierr maps store sentinel errors onto HTTP statuses so every
// handler reports the same taxonomy: 404 for missing things, 409 for
// duplicates and terminal-state conflicts, 503 when the store is
// unreachable. Anything else bubbles up as a 500.
package apierr

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sampark-backend/store"
)

func From(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, "Already exists")
	case errors.Is(err, store.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "Conflicting state")
	case errors.Is(err, store.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Upstream store unavailable")
	}
	return err
}
