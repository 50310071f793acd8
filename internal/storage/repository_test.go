package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeksandijan/hrbot/core/database"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "hr.db")}
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(ctx, db, cfg))
	return New(db)
}

func seller(name string) *Application {
	return &Application{
		UserID:     42,
		Name:       name,
		Age:        20,
		Phone:      "+998901234567",
		Vacancy:    "Sotuvchi",
		Experience: "3 yil",
		Workplace:  Ptr("ABC firma"),
		Username:   "ali",
		PhotoID:    "photo-1",
		CreatedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func mentor(name string) *Application {
	return &Application{
		UserID:     43,
		Name:       name,
		Age:        30,
		Phone:      "998901234567",
		Vacancy:    "Mentor",
		Subject:    Ptr("Dasturlash"),
		Experience: "5 yil",
		PhotoID:    "photo-2",
		CVFileID:   Ptr("cv-2"),
		CreatedAt:  time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndQueryApplications(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := seller("Ali Valiyev")
	id, err := repo.SaveApplication(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	m := mentor("Vali Aliyev")
	_, err = repo.SaveApplication(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "N/A", m.Username)

	recent, err := repo.RecentApplications(ctx, 5, "")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	if diff := cmp.Diff(*m, recent[0]); diff != "" {
		t.Fatalf("newest record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(*a, recent[1]); diff != "" {
		t.Fatalf("oldest record mismatch (-want +got):\n%s", diff)
	}

	only, err := repo.RecentApplications(ctx, 5, "Mentor")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "Vali Aliyev", only[0].Name)

	limited, err := repo.RecentApplications(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, m.ID, limited[0].ID)
}

func TestInvalidVacancyFilterFallsBackToUnfiltered(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	_, err := repo.SaveApplication(ctx, seller("Ali Valiyev"))
	require.NoError(t, err)
	_, err = repo.SaveApplication(ctx, mentor("Vali Aliyev"))
	require.NoError(t, err)

	recent, err := repo.RecentApplications(ctx, 5, "Astronaut")
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	all, err := repo.AllApplications(ctx, "Astronaut")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sellers, err := repo.AllApplications(ctx, "Sotuvchi")
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, "ABC firma", *sellers[0].Workplace)
}

func TestSaveApplicationRejectsBrokenInvariants(t *testing.T) {
	repo := newTestRepo(t)
	bad := seller("Ali")
	bad.Subject = Ptr("SMM")
	_, err := repo.SaveApplication(context.Background(), bad)
	require.ErrorIs(t, err, ErrInvalidRecord)

	noName := mentor("")
	_, err = repo.SaveApplication(context.Background(), noName)
	require.ErrorIs(t, err, ErrInvalidRecord)

	all, err := repo.AllApplications(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTicketsLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tk := &Ticket{UserID: 42, Username: Ptr("ali"), Category: "💳 To'lov", Question: "Bo'lib to'lash mumkinmi?"}
	_, err := repo.SaveTicket(ctx, tk)
	require.NoError(t, err)
	_, err = repo.SaveTicket(ctx, &Ticket{UserID: 42, Category: "🔄 Boshqa", Question: "Ovozli xabar", VoiceID: Ptr("voice-1")})
	require.NoError(t, err)

	n, err := repo.MarkAnswered(ctx, 42, 1, "Ha, mumkin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.MarkAnswered(ctx, 42, 1, "again")
	assert.ErrorIs(t, err, ErrNotFound)

	tickets, err := repo.RecentTickets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, TicketAnswered, tickets[0].Status)
	require.NotNil(t, tickets[0].AnswerText)
	assert.Equal(t, "Ha, mumkin", *tickets[0].AnswerText)
	require.NotNil(t, tickets[1].AnsweredAt)
	assert.Equal(t, "voice-1", *tickets[0].VoiceID)
}

func TestLeads(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.SaveLead(ctx, &Lead{UserID: 5, Course: "SMM", Tariff: "Premium", Phone: "+998901234567"})
	require.NoError(t, err)
	_, err = repo.SaveLead(ctx, &Lead{UserID: 5, Course: "SMM"})
	require.ErrorIs(t, err, ErrInvalidRecord)

	leads, err := repo.RecentLeads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Premium", leads[0].Tariff)
	assert.Nil(t, leads[0].Username)
}

func TestSaveApplicationWrapsDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := New(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectQuery(`INSERT INTO applicants`).WillReturnError(errors.New("disk I/O error"))

	_, err = repo.SaveApplication(context.Background(), seller("Ali Valiyev"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save application: disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAnsweredWrapsDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := New(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectExec(`UPDATE support_tickets`).WillReturnError(errors.New("locked"))
	_, err = repo.MarkAnswered(context.Background(), 1, 2, "x")
	require.ErrorContains(t, err, "mark answered: locked")
	require.NoError(t, mock.ExpectationsWereMet())
}
