package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sampark-backend/creds"
	"sampark-backend/models"
)

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const attendeeColumns = `
	id, created_at, name, email, phone, university, department, year,
	selected_event, poster_theme, transaction_id, ieee_membership,
	status, password_hash, slug, github, linkedin, instagram
`

const connectionColumns = `
	id, created_at, source_email, target_email, source_name, source_phone,
	note, status
`

func scanAttendee(row pgx.Row) (*models.Attendee, error) {
	var a models.Attendee
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.Name, &a.Email, &a.Phone, &a.University,
		&a.Department, &a.Year, &a.SelectedEvent, &a.PosterTheme,
		&a.TransactionID, &a.IEEEMembership, &a.Status, &a.PasswordHash,
		&a.Slug, &a.GitHub, &a.LinkedIn, &a.Instagram,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// upstream wraps unexpected pg errors so handlers can surface 503 instead
// of pretending the result set was empty.
func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func (p *Postgres) CreateAttendee(ctx context.Context, a *models.Attendee) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO attendees(
			name, email, phone, university, department, year,
			selected_event, poster_theme, transaction_id, ieee_membership,
			status, slug, github
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at
	`, a.Name, NormalizeEmail(a.Email), a.Phone, a.University, a.Department,
		a.Year, a.SelectedEvent, a.PosterTheme, a.TransactionID,
		a.IEEEMembership, a.Status, a.Slug, a.GitHub,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "attendees_email_key") {
			return ErrDuplicate
		}
		return upstream("insert attendee", err)
	}
	a.Email = NormalizeEmail(a.Email)
	return nil
}

func (p *Postgres) GetAttendeeByEmail(ctx context.Context, email string) (*models.Attendee, error) {
	a, err := scanAttendee(p.pool.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE email = $1`,
		NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, upstream("get attendee by email", err)
	}
	return a, nil
}

func (p *Postgres) GetAttendeeByID(ctx context.Context, id int64) (*models.Attendee, error) {
	a, err := scanAttendee(p.pool.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, upstream("get attendee by id", err)
	}
	return a, nil
}

func (p *Postgres) GetAttendeeBySlug(ctx context.Context, slug string) (*models.Attendee, error) {
	a, err := scanAttendee(p.pool.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE slug = $1`,
		strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, upstream("get attendee by slug", err)
	}
	return a, nil
}

func (p *Postgres) listAttendees(ctx context.Context, suffix string, args ...any) ([]models.Attendee, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+attendeeColumns+` FROM attendees `+suffix, args...)
	if err != nil {
		return nil, upstream("list attendees", err)
	}
	defer rows.Close()

	out := make([]models.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, upstream("scan attendee", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("list attendees", err)
	}
	return out, nil
}

func (p *Postgres) ListAttendees(ctx context.Context) ([]models.Attendee, error) {
	return p.listAttendees(ctx, `ORDER BY id`)
}

func (p *Postgres) SearchAttendees(ctx context.Context, query string, limit int) ([]models.Attendee, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return p.listAttendees(ctx,
		`WHERE name ILIKE $1 OR email ILIKE $1 ORDER BY id LIMIT $2`,
		pattern, limit)
}

func (p *Postgres) SampleAttendees(ctx context.Context, limit int) ([]models.Attendee, error) {
	return p.listAttendees(ctx, `ORDER BY random() LIMIT $1`, limit)
}

func (p *Postgres) UpdateAttendeeProfile(ctx context.Context, email string, upd models.UpdateProfileRequest) error {
	sets := []string{}
	args := []any{}
	i := 1

	add := func(col string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, fmt.Sprintf("%s=$%d", col, i))
		args = append(args, strings.TrimSpace(*v))
		i++
	}
	add("name", upd.Name)
	add("phone", upd.Phone)
	add("university", upd.University)
	add("department", upd.Department)
	add("year", upd.Year)
	add("selected_event", upd.SelectedEvent)
	add("poster_theme", upd.PosterTheme)
	add("github", upd.GitHub)
	add("linkedin", upd.LinkedIn)
	add("instagram", upd.Instagram)

	if len(sets) == 0 {
		return nil
	}

	args = append(args, NormalizeEmail(email))
	cmd, err := p.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE attendees SET %s WHERE email=$%d`, strings.Join(sets, ", "), i),
		args...)
	if err != nil {
		return upstream("update attendee profile", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ApproveAttendee(ctx context.Context, email string) error {
	cmd, err := p.pool.Exec(ctx,
		`UPDATE attendees SET status=$1 WHERE email=$2`,
		models.StatusApproved, NormalizeEmail(email))
	if err != nil {
		return upstream("approve attendee", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetPasswordHash(ctx context.Context, email, hash string) error {
	cmd, err := p.pool.Exec(ctx,
		`UPDATE attendees SET password_hash=$1 WHERE email=$2`,
		hash, NormalizeEmail(email))
	if err != nil {
		return upstream("set password hash", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) BackfillSlugs(ctx context.Context) (int, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM attendees WHERE slug IS NULL OR slug = ''`)
	if err != nil {
		return 0, upstream("backfill slugs", err)
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, upstream("backfill slugs", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, upstream("backfill slugs", err)
	}

	updated := 0
	for _, id := range ids {
		if _, err := p.pool.Exec(ctx,
			`UPDATE attendees SET slug=$1 WHERE id=$2`,
			creds.GenerateSlug(), id); err != nil {
			return updated, upstream("backfill slugs", err)
		}
		updated++
	}
	return updated, nil
}

func (p *Postgres) CreateConnection(ctx context.Context, c *models.Connection) (bool, error) {
	c.SourceEmail = NormalizeEmail(c.SourceEmail)
	c.TargetEmail = NormalizeEmail(c.TargetEmail)
	cmd, err := p.pool.Exec(ctx, `
		INSERT INTO connections(source_email, target_email, source_name, source_phone, note, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (source_email, target_email) DO NOTHING
	`, c.SourceEmail, c.TargetEmail, c.SourceName, c.SourcePhone, c.Note, models.ConnectionPending)
	if err != nil {
		return false, upstream("create connection", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (p *Postgres) listConnections(ctx context.Context, suffix string, args ...any) ([]models.Connection, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+connectionColumns+` FROM connections `+suffix, args...)
	if err != nil {
		return nil, upstream("list connections", err)
	}
	defer rows.Close()

	out := make([]models.Connection, 0)
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.SourceEmail, &c.TargetEmail,
			&c.SourceName, &c.SourcePhone, &c.Note, &c.Status); err != nil {
			return nil, upstream("scan connection", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream("list connections", err)
	}
	return out, nil
}

func (p *Postgres) ListConnections(ctx context.Context, email string) ([]models.Connection, error) {
	e := NormalizeEmail(email)
	return p.listConnections(ctx,
		`WHERE source_email=$1 OR target_email=$1 ORDER BY created_at DESC, id DESC`, e)
}

func (p *Postgres) ConnectionBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	na, nb := NormalizeEmail(a), NormalizeEmail(b)
	edges, err := p.listConnections(ctx, `
		WHERE (source_email=$1 AND target_email=$2)
		   OR (source_email=$2 AND target_email=$1)
		ORDER BY id LIMIT 1`, na, nb)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, ErrNotFound
	}
	return &edges[0], nil
}

func (p *Postgres) RespondConnection(ctx context.Context, sourceEmail, targetEmail string, decision models.ConnectionStatus) error {
	s, t := NormalizeEmail(sourceEmail), NormalizeEmail(targetEmail)

	var status models.ConnectionStatus
	err := p.pool.QueryRow(ctx,
		`SELECT status FROM connections WHERE source_email=$1 AND target_email=$2`,
		s, t).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return upstream("respond connection", err)
	}
	if status != models.ConnectionPending {
		// Accepted and Rejected are terminal.
		return ErrConflict
	}

	_, err = p.pool.Exec(ctx, `
		UPDATE connections SET status=$3
		WHERE source_email=$1 AND target_email=$2 AND status=$4
	`, s, t, decision, models.ConnectionPending)
	if err != nil {
		return upstream("respond connection", err)
	}
	return nil
}

func (p *Postgres) ListAcceptedEdges(ctx context.Context) ([]models.Connection, error) {
	return p.listConnections(ctx, `WHERE status=$1`, models.ConnectionAccepted)
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return upstream("ping", err)
	}
	return nil
}

// escapeLike keeps user-typed % and _ literal inside ILIKE patterns.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
