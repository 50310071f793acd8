// Package storage persists applications, support tickets and course leads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/internal/validate"
)

var (
	// ErrNotFound is returned when an update matched no rows.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidRecord wraps invariant violations caught before insert.
	ErrInvalidRecord = errors.New("storage: invalid record")
)

// DefaultTimeout bounds every repository call.
const DefaultTimeout = 5 * time.Second

// Repository is the sqlx backed record store.
type Repository struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// New returns a repository over db.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, timeout: DefaultTimeout, now: time.Now}
}

func (r *Repository) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()
	var id int64
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) selectAll(ctx context.Context, dst any, query string, args ...any) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()
	return r.db.SelectContext(ctx, dst, r.db.Rebind(query), args...)
}

// SaveApplication appends a record and returns its id.
func (r *Repository) SaveApplication(ctx context.Context, a *Application) (int64, error) {
	if err := a.Check(); err != nil {
		return 0, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	if a.Username == "" {
		a.Username = "N/A"
	}
	id, err := r.insert(ctx, `
		INSERT INTO applicants
			(user_id, name, age, phone, vacancy, subject, experience, workplace, username, photo_id, cv_file_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.UserID, a.Name, a.Age, a.Phone, a.Vacancy, a.Subject, a.Experience, a.Workplace,
		a.Username, a.PhotoID, a.CVFileID, a.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save application: %w", err)
	}
	a.ID = id
	return id, nil
}

const applicationColumns = `id, user_id, name, age, phone, vacancy, subject, experience, workplace,
	username, photo_id, cv_file_id, created_at`

// vacancyFilter returns the vacancy to filter by. Unknown values fall back
// to no filter at all, which is what admins have always seen.
func vacancyFilter(ctx context.Context, vacancy string) string {
	if vacancy == "" || validate.Vacancy(vacancy) {
		return vacancy
	}
	logger.Debug(ctx, "db", "vacancy.filter",
		slog.String("status", "skip"),
		slog.String("vacancy", logger.SanitizeLimit(vacancy, 32)),
	)
	return ""
}

// RecentApplications returns up to limit applications, newest first.
func (r *Repository) RecentApplications(ctx context.Context, limit int, vacancy string) ([]Application, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []Application
	var err error
	if v := vacancyFilter(ctx, vacancy); v != "" {
		err = r.selectAll(ctx, &out, `SELECT `+applicationColumns+` FROM applicants WHERE vacancy = ? ORDER BY id DESC LIMIT ?`, v, limit)
	} else {
		err = r.selectAll(ctx, &out, `SELECT `+applicationColumns+` FROM applicants ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}
	return out, nil
}

// AllApplications returns every application in insertion order.
func (r *Repository) AllApplications(ctx context.Context, vacancy string) ([]Application, error) {
	var out []Application
	var err error
	if v := vacancyFilter(ctx, vacancy); v != "" {
		err = r.selectAll(ctx, &out, `SELECT `+applicationColumns+` FROM applicants WHERE vacancy = ? ORDER BY id`, v)
	} else {
		err = r.selectAll(ctx, &out, `SELECT `+applicationColumns+` FROM applicants ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("all applications: %w", err)
	}
	return out, nil
}

// SaveTicket stores a pending support ticket.
func (r *Repository) SaveTicket(ctx context.Context, t *Ticket) (int64, error) {
	if t.Category == "" || t.Question == "" {
		return 0, fmt.Errorf("%w: category and question are required", ErrInvalidRecord)
	}
	if t.Status == "" {
		t.Status = TicketPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}
	id, err := r.insert(ctx, `
		INSERT INTO support_tickets
			(user_id, username, phone, category, question, question_voice_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.UserID, t.Username, t.Phone, t.Category, t.Question, t.VoiceID, t.Status, t.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save ticket: %w", err)
	}
	t.ID = id
	return id, nil
}

// RecentTickets returns up to limit tickets, newest first.
func (r *Repository) RecentTickets(ctx context.Context, limit int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Ticket
	if err := r.selectAll(ctx, &out, `
		SELECT id, user_id, username, phone, category, question, question_voice_id, status,
			created_at, answered_at, answered_by, answer_text
		FROM support_tickets ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("recent tickets: %w", err)
	}
	return out, nil
}

// MarkAnswered closes every pending ticket of userID. It returns ErrNotFound
// when the user had none.
func (r *Repository) MarkAnswered(ctx context.Context, userID, answeredBy int64, answer string) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE support_tickets
		SET status = ?, answered_at = ?, answered_by = ?, answer_text = ?
		WHERE user_id = ? AND status = ?`),
		TicketAnswered, r.now().UTC(), answeredBy, answer, userID, TicketPending,
	)
	if err != nil {
		return 0, fmt.Errorf("mark answered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark answered: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

// SaveLead stores a course lead.
func (r *Repository) SaveLead(ctx context.Context, l *Lead) (int64, error) {
	if l.Course == "" || l.Tariff == "" || l.Phone == "" {
		return 0, fmt.Errorf("%w: course, tariff and phone are required", ErrInvalidRecord)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.now().UTC()
	}
	id, err := r.insert(ctx, `
		INSERT INTO course_leads (user_id, username, course_name, tariff, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		l.UserID, l.Username, l.Course, l.Tariff, l.Phone, l.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save lead: %w", err)
	}
	l.ID = id
	return id, nil
}

// RecentLeads returns up to limit leads, newest first.
func (r *Repository) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Lead
	if err := r.selectAll(ctx, &out, `
		SELECT id, user_id, username, course_name, tariff, phone, created_at
		FROM course_leads ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("recent leads: %w", err)
	}
	return out, nil
}
