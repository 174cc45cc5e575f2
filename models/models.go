package models

import "time"

// ErrorResponse represents a generic error structure for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Enums

// AttendeeStatus tracks the admin-approval lifecycle of a registration.
type AttendeeStatus string

const (
	StatusPending  AttendeeStatus = "Pending"
	StatusApproved AttendeeStatus = "Approved"
)

// ConnectionStatus is the state of a directed connection edge.
// Pending may move to Accepted or Rejected; both are terminal.
type ConnectionStatus string

const (
	ConnectionNone     ConnectionStatus = "None"
	ConnectionPending  ConnectionStatus = "Pending"
	ConnectionAccepted ConnectionStatus = "Accepted"
	ConnectionRejected ConnectionStatus = "Rejected"
)

// Direction tags a connection relative to the attendee it was listed for.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Main Models

type Attendee struct {
	ID             int64          `json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          *string        `json:"phone"`
	University     *string        `json:"university"`
	Department     *string        `json:"department"`
	Year           *string        `json:"year"`
	SelectedEvent  *string        `json:"selected_event"`
	PosterTheme    *string        `json:"poster_theme"`
	TransactionID  *string        `json:"transaction_id"`
	IEEEMembership *string        `json:"ieee_membership_number"`
	Status         AttendeeStatus `json:"status"`
	PasswordHash   *string        `json:"-"` // bcrypt; nil until credentials are issued
	Slug           string         `json:"slug"`
	GitHub         *string        `json:"github"`
	LinkedIn       *string        `json:"linkedin"`
	Instagram      *string        `json:"instagram"`
}

type Connection struct {
	ID          int64            `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	SourceEmail string           `json:"source_email"`
	TargetEmail string           `json:"target_email"`
	SourceName  *string          `json:"source_name"`
	SourcePhone *string          `json:"source_phone"`
	Note        *string          `json:"note"`
	Status      ConnectionStatus `json:"status"`
}

// AnnotatedConnection is a Connection enriched for listing: which way the
// edge points relative to the queried attendee, and the other party's
// resolved display name.
type AnnotatedConnection struct {
	Connection
	Direction Direction `json:"direction"`
	PeerName  string    `json:"name"`
}

// DirectoryEntry is one row of the attendee directory with its
// deduplicated accepted-connection count.
type DirectoryEntry struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	SelectedEvent *string `json:"selected_event"`
	PosterTheme   *string `json:"poster_theme"`
	Slug          string  `json:"slug"`
	Connections   int     `json:"connections"`
}

// SearchResult deliberately omits email and phone; search is reachable
// without authentication.
type SearchResult struct {
	Name          string  `json:"name"`
	SelectedEvent *string `json:"selected_event"`
	Slug          string  `json:"slug"`
}

// PublicProfile is the shareable projection rendered for anonymous
// visitors. No email, no phone.
type PublicProfile struct {
	Name          string  `json:"name"`
	SelectedEvent *string `json:"selected_event"`
	PosterTheme   *string `json:"poster_theme"`
	Slug          string  `json:"slug"`
	GitHub        *string `json:"github"`
	LinkedIn      *string `json:"linkedin"`
	Instagram     *string `json:"instagram"`
	Connections   int     `json:"connections"`
}

// Profile is the full projection an authenticated attendee sees of a user.
type Profile struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	University     *string `json:"university"`
	Department     *string `json:"department"`
	Year           *string `json:"year"`
	SelectedEvent  *string `json:"selected_event"`
	PosterTheme    *string `json:"poster_theme"`
	TransactionID  *string `json:"transaction_id"`
	IEEEMembership *string `json:"ieee_membership_number"`
	Slug           string  `json:"slug"`
	GitHub         *string `json:"github"`
	LinkedIn       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
	Connections    int     `json:"connections"`
}

// Request DTOs (Data Transfer Objects)

type RegisterRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	University     *string `json:"university,omitempty"`
	Department     *string `json:"department,omitempty"`
	Year           *string `json:"year,omitempty"`
	SelectedEvent  *string `json:"selected_event,omitempty"`
	PosterTheme    *string `json:"poster_theme,omitempty"`
	TransactionID  *string `json:"transaction_id,omitempty"`
	IEEEMembership *string `json:"ieee_membership_number,omitempty"`
	GitHub         *string `json:"github,omitempty"`
}

type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// UserProjection is the minimal user payload returned after login.
type UserProjection struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
	Slug  string  `json:"slug"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int            `json:"expires_in"`
	User        UserProjection `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ApproveRequest struct {
	AdminPassword string `json:"adminPassword"`
	Email         string `json:"email"`
}

type BackfillSlugsRequest struct {
	AdminPassword string `json:"adminPassword"`
}

type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	University    *string `json:"university"`
	Department    *string `json:"department"`
	Year          *string `json:"year"`
	SelectedEvent *string `json:"selected_event"`
	PosterTheme   *string `json:"poster_theme"`
	GitHub        *string `json:"github"`
	LinkedIn      *string `json:"linkedin"`
	Instagram     *string `json:"instagram"`
}

// ConnectRequest is the body of POST /users/:id when action == "connect".
type ConnectRequest struct {
	Action      string  `json:"action"`
	SourceEmail string  `json:"sourceEmail"`
	SourceName  *string `json:"sourceName,omitempty"`
	SourcePhone *string `json:"sourcePhone,omitempty"`
	Note        *string `json:"note,omitempty"`
}

type RespondRequest struct {
	SourceEmail string           `json:"sourceEmail"`
	TargetEmail string           `json:"targetEmail"`
	Decision    ConnectionStatus `json:"decision"`
}

type ExternalLinks struct {
	RegistrationForm string `json:"registration_form"`
	WhatsAppGroup    string `json:"whatsapp_group"`
}
