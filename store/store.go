// Package store is the single data-access layer for the portal. The old
// sheet-backed portal grew three near-duplicate access modules with
// drifting column offsets; everything goes through this one interface now.
package store

import (
	"context"
	"errors"
	"strings"

	"sampark-backend/models"
)

// Sentinel errors. Handlers map these to HTTP statuses; store or
// connectivity failures are wrapped as ErrUnavailable and must never be
// flattened into an empty result or a zero count.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("already exists")
	ErrConflict    = errors.New("conflicting state")
	ErrUnavailable = errors.New("store unavailable")
)

// Store is implemented by Postgres for production and by Memory for local
// development and handler tests.
type Store interface {
	// Attendees
	CreateAttendee(ctx context.Context, a *models.Attendee) error
	GetAttendeeByEmail(ctx context.Context, email string) (*models.Attendee, error)
	GetAttendeeByID(ctx context.Context, id int64) (*models.Attendee, error)
	GetAttendeeBySlug(ctx context.Context, slug string) (*models.Attendee, error)
	ListAttendees(ctx context.Context) ([]models.Attendee, error)
	SearchAttendees(ctx context.Context, query string, limit int) ([]models.Attendee, error)
	SampleAttendees(ctx context.Context, limit int) ([]models.Attendee, error)
	UpdateAttendeeProfile(ctx context.Context, email string, upd models.UpdateProfileRequest) error
	ApproveAttendee(ctx context.Context, email string) error
	SetPasswordHash(ctx context.Context, email, hash string) error
	BackfillSlugs(ctx context.Context) (int, error)

	// Connections
	CreateConnection(ctx context.Context, c *models.Connection) (created bool, err error)
	ListConnections(ctx context.Context, email string) ([]models.Connection, error)
	ConnectionBetween(ctx context.Context, a, b string) (*models.Connection, error)
	RespondConnection(ctx context.Context, sourceEmail, targetEmail string, decision models.ConnectionStatus) error
	ListAcceptedEdges(ctx context.Context) ([]models.Connection, error)

	Ping(ctx context.Context) error
}

// NormalizeEmail is the canonical email comparison form used everywhere:
// trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
