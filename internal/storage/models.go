package storage

import (
	"errors"
	"time"

	"github.com/geeksandijan/hrbot/internal/validate"
)

// Ticket statuses.
const (
	TicketPending  = "pending"
	TicketAnswered = "answered"
)

// Application is a submitted job application. Rows are never updated.
type Application struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	Name       string    `db:"name"`
	Age        int       `db:"age"`
	Phone      string    `db:"phone"`
	Vacancy    string    `db:"vacancy"`
	Subject    *string   `db:"subject"`
	Experience string    `db:"experience"`
	Workplace  *string   `db:"workplace"`
	Username   string    `db:"username"`
	PhotoID    string    `db:"photo_id"`
	CVFileID   *string   `db:"cv_file_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Mentor reports whether the application targets the mentor vacancy.
func (a Application) Mentor() bool { return a.Vacancy == validate.VacancyMentor }

// Check enforces the record invariants: name and vacancy are present,
// subject is set only for mentors and workplace only for everyone else.
func (a Application) Check() error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if a.Vacancy == "" {
		errs = append(errs, errors.New("vacancy is required"))
	}
	if a.Mentor() != (a.Subject != nil) {
		errs = append(errs, errors.New("subject must be set exactly for mentors"))
	}
	if a.Mentor() == (a.Workplace != nil) {
		errs = append(errs, errors.New("workplace must be set exactly for non-mentors"))
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrInvalidRecord, err)
	}
	return nil
}

// Ticket is a support question. Only the answer columns change after insert.
type Ticket struct {
	ID         int64      `db:"id"`
	UserID     int64      `db:"user_id"`
	Username   *string    `db:"username"`
	Phone      *string    `db:"phone"`
	Category   string     `db:"category"`
	Question   string     `db:"question"`
	VoiceID    *string    `db:"question_voice_id"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	AnsweredAt *time.Time `db:"answered_at"`
	AnsweredBy *int64     `db:"answered_by"`
	AnswerText *string    `db:"answer_text"`
}

// Lead is a request for a call back about a course.
type Lead struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  *string   `db:"username"`
	Course    string    `db:"course_name"`
	Tariff    string    `db:"tariff"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// Ptr returns &s, or nil for an empty string.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
