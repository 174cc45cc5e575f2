package store

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"sampark-backend/creds"
	"sampark-backend/models"
)

// Memory is an in-process Store used for local development
// (STORE_DRIVER=memory) and by the handler tests. Everything is guarded by
// one mutex; data lives for the lifetime of the process.
type Memory struct {
	mu          sync.Mutex
	attendees   []models.Attendee
	connections []models.Connection
	nextAttID   int64
	nextConnID  int64
}

func NewMemory() *Memory {
	return &Memory{nextAttID: 1, nextConnID: 1}
}

func (m *Memory) CreateAttendee(_ context.Context, a *models.Attendee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := NormalizeEmail(a.Email)
	for _, x := range m.attendees {
		if x.Email == email {
			return ErrDuplicate
		}
	}
	a.ID = m.nextAttID
	m.nextAttID++
	a.CreatedAt = time.Now()
	a.Email = email
	m.attendees = append(m.attendees, *a)
	return nil
}

func (m *Memory) findByEmail(email string) (int, bool) {
	e := NormalizeEmail(email)
	for i, x := range m.attendees {
		if x.Email == e {
			return i, true
		}
	}
	return 0, false
}

func (m *Memory) GetAttendeeByEmail(_ context.Context, email string) (*models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.findByEmail(email); ok {
		a := m.attendees[i]
		return &a, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) GetAttendeeByID(_ context.Context, id int64) (*models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, x := range m.attendees {
		if x.ID == id {
			a := x
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetAttendeeBySlug(_ context.Context, slug string) (*models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := strings.TrimSpace(slug)
	for _, x := range m.attendees {
		if x.Slug == s {
			a := x
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListAttendees(_ context.Context) ([]models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Attendee, len(m.attendees))
	copy(out, m.attendees)
	return out, nil
}

func (m *Memory) SearchAttendees(_ context.Context, query string, limit int) ([]models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Attendee, 0)
	for _, x := range m.attendees {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(x.Name), q) || strings.Contains(x.Email, q) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (m *Memory) SampleAttendees(_ context.Context, limit int) ([]models.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Attendee, len(m.attendees))
	copy(out, m.attendees)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) UpdateAttendeeProfile(_ context.Context, email string, upd models.UpdateProfileRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.findByEmail(email)
	if !ok {
		return ErrNotFound
	}
	a := &m.attendees[i]
	set := func(dst **string, v *string) {
		if v != nil {
			s := strings.TrimSpace(*v)
			*dst = &s
		}
	}
	if upd.Name != nil {
		a.Name = strings.TrimSpace(*upd.Name)
	}
	set(&a.Phone, upd.Phone)
	set(&a.University, upd.University)
	set(&a.Department, upd.Department)
	set(&a.Year, upd.Year)
	set(&a.SelectedEvent, upd.SelectedEvent)
	set(&a.PosterTheme, upd.PosterTheme)
	set(&a.GitHub, upd.GitHub)
	set(&a.LinkedIn, upd.LinkedIn)
	set(&a.Instagram, upd.Instagram)
	return nil
}

func (m *Memory) ApproveAttendee(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.findByEmail(email)
	if !ok {
		return ErrNotFound
	}
	m.attendees[i].Status = models.StatusApproved
	return nil
}

func (m *Memory) SetPasswordHash(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.findByEmail(email)
	if !ok {
		return ErrNotFound
	}
	h := hash
	m.attendees[i].PasswordHash = &h
	return nil
}

func (m *Memory) BackfillSlugs(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	for i := range m.attendees {
		if strings.TrimSpace(m.attendees[i].Slug) == "" {
			m.attendees[i].Slug = creds.GenerateSlug()
			updated++
		}
	}
	return updated, nil
}

func (m *Memory) CreateConnection(_ context.Context, c *models.Connection) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.SourceEmail = NormalizeEmail(c.SourceEmail)
	c.TargetEmail = NormalizeEmail(c.TargetEmail)
	for _, e := range m.connections {
		if e.SourceEmail == c.SourceEmail && e.TargetEmail == c.TargetEmail {
			return false, nil
		}
	}
	c.ID = m.nextConnID
	m.nextConnID++
	c.CreatedAt = time.Now()
	c.Status = models.ConnectionPending
	m.connections = append(m.connections, *c)
	return true, nil
}

func (m *Memory) ListConnections(_ context.Context, email string) ([]models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := NormalizeEmail(email)
	out := make([]models.Connection, 0)
	for _, c := range m.connections {
		if c.SourceEmail == e || c.TargetEmail == e {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ConnectionBetween(_ context.Context, a, b string) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	na, nb := NormalizeEmail(a), NormalizeEmail(b)
	for _, c := range m.connections {
		if (c.SourceEmail == na && c.TargetEmail == nb) ||
			(c.SourceEmail == nb && c.TargetEmail == na) {
			cc := c
			return &cc, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) RespondConnection(_ context.Context, sourceEmail, targetEmail string, decision models.ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, t := NormalizeEmail(sourceEmail), NormalizeEmail(targetEmail)
	for i := range m.connections {
		c := &m.connections[i]
		if c.SourceEmail != s || c.TargetEmail != t {
			continue
		}
		if c.Status != models.ConnectionPending {
			return ErrConflict
		}
		c.Status = decision
		return nil
	}
	return ErrNotFound
}

func (m *Memory) ListAcceptedEdges(_ context.Context) ([]models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Connection, 0)
	for _, c := range m.connections {
		if c.Status == models.ConnectionAccepted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
