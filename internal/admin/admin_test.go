package admin

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeksandijan/hrbot/internal/catalog"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow/flowtest"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/gateway/gatewaytest"
	"github.com/geeksandijan/hrbot/internal/storage"
)

const (
	boss    = 100
	visitor = 200
	group   = -300
)

func setup(t *testing.T) (*Admin, *gatewaytest.Recorder, *storage.Repository) {
	t.Helper()
	gw, repo := gatewaytest.New(), flowtest.NewRepository(t)
	return New(gw, repo, Options{Admins: []int64{boss, 0}, SupportGroupID: group}), gw, repo
}

func private(id int64) event.Event {
	return event.Event{Identity: id, ChatID: id}
}

func seed(t *testing.T, repo *storage.Repository) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.SaveApplication(ctx, &storage.Application{
		UserID: 1, Name: "Ali Valiyev", Age: 20, Phone: "+998901234567", Vacancy: "Sotuvchi",
		Experience: "3 yil", Workplace: storage.Ptr("ABC firma"), Username: "ali", PhotoID: "p1",
	})
	require.NoError(t, err)
	_, err = repo.SaveApplication(ctx, &storage.Application{
		UserID: 2, Name: "Dilnoza", Age: 28, Phone: "998901112233", Vacancy: "Mentor",
		Subject: storage.Ptr("SMM"), Experience: "5 yil", Username: "N/A", PhotoID: "p2",
	})
	require.NoError(t, err)
}

func TestNonAdminIsIgnored(t *testing.T) {
	a, gw, repo := setup(t)
	seed(t, repo)

	for _, name := range []string{CmdLast, CmdExport, CmdTickets, CmdLeads, CmdAnswer} {
		assert.True(t, a.Command(context.Background(), private(visitor), name, ""), name)
	}
	assert.Empty(t, gw.All())
	assert.False(t, a.Button(context.Background(), private(visitor), catalog.ButtonAdminLast))
	assert.False(t, a.Command(context.Background(), private(boss), "start", ""))
}

func TestLast(t *testing.T) {
	a, gw, repo := setup(t)
	ctx := context.Background()

	a.Command(ctx, private(boss), CmdLast, "")
	assert.Equal(t, []string{msgNone}, gw.Texts(boss))

	a.Command(ctx, private(boss), CmdLast, "mentor")
	last, _ := gw.Last(boss)
	assert.Equal(t, "Mentor bo'yicha ariza topilmadi.", last.Text)

	seed(t, repo)
	a.Command(ctx, private(boss), CmdLast, " mentor ")
	last, _ = gw.Last(boss)
	assert.Contains(t, last.Text, "📋 Oxirgi arizalar (Mentor):")
	assert.Contains(t, last.Text, "👤 Dilnoza | 📞 998901112233 | 🏢 Mentor | 📚 SMM | 💼 5 yil | 🏭 -")
	assert.NotContains(t, last.Text, "Ali Valiyev")

	require.True(t, a.Button(ctx, private(boss), catalog.ButtonAdminLast))
	last, _ = gw.Last(boss)
	assert.Contains(t, last.Text, "📋 Oxirgi arizalar:")
	assert.Contains(t, last.Text, "Ali Valiyev")
	assert.Contains(t, last.Text, "Dilnoza")

	a.Command(ctx, private(boss), CmdLast, "astronaut")
	last, _ = gw.Last(boss)
	assert.Contains(t, last.Text, "📋 Oxirgi arizalar:")
	assert.NotContains(t, last.Text, "Astronaut")
	assert.Contains(t, last.Text, "Ali Valiyev")
}

func TestExport(t *testing.T) {
	a, gw, repo := setup(t)
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		args string
		want string
	}{
		{"", "all_arizalar.xlsx"},
		{"MENTOR", "Mentor_arizalar.xlsx"},
		{"bogus", "all_arizalar.xlsx"},
	}
	for _, tt := range tests {
		a.Command(ctx, private(boss), CmdExport, tt.args)
		msg, ok := gw.Last(boss)
		require.True(t, ok)
		require.NotNil(t, msg.Attachment, tt.args)
		assert.Equal(t, gateway.AttachDocument, msg.Attachment.Kind)
		require.NotNil(t, msg.Attachment.File)
		assert.Equal(t, tt.want, msg.Attachment.File.Name)
		assert.NotEmpty(t, msg.Attachment.File.Data)
	}

	require.True(t, a.Button(ctx, private(boss), catalog.ButtonAdminExport))
	msg, _ := gw.Last(boss)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "all_arizalar.xlsx", msg.Attachment.File.Name)
}

func TestTicketsAndLeads(t *testing.T) {
	a, gw, repo := setup(t)
	ctx := context.Background()

	a.Command(ctx, private(boss), CmdTickets, "")
	a.Command(ctx, private(boss), CmdLeads, "")
	assert.Equal(t, []string{msgNoTickets, msgNoLeads}, gw.Texts(boss))

	_, err := repo.SaveTicket(ctx, &storage.Ticket{
		UserID: 5, Username: storage.Ptr("sardor"), Category: "💳 To'lov",
		Question: "To'lovni bo'lib to'lash mumkinmi? Oyiga qancha bo'ladi va qachon to'lanadi?",
		Status:   storage.TicketPending,
	})
	require.NoError(t, err)
	_, err = repo.SaveLead(ctx, &storage.Lead{UserID: 6, Course: "SMM", Tariff: "Premium", Phone: "+998901234567"})
	require.NoError(t, err)

	a.Command(ctx, private(boss), CmdTickets, "")
	last, _ := gw.Last(boss)
	assert.Contains(t, last.Text, "🎫 Ticket #1")
	assert.Contains(t, last.Text, "@sardor (ID: 5)")
	assert.Contains(t, last.Text, "...")

	a.Command(ctx, private(boss), CmdLeads, "")
	last, _ = gw.Last(boss)
	assert.Contains(t, last.Text, "N/A (ID: 6)")
	assert.Contains(t, last.Text, "SMM | Premium")
}

func TestAnswerFromSupportGroup(t *testing.T) {
	a, gw, repo := setup(t)
	ctx := context.Background()
	_, err := repo.SaveTicket(ctx, &storage.Ticket{UserID: 5, Category: "📍 Manzil", Question: "Qayerdasiz?", Status: storage.TicketPending})
	require.NoError(t, err)

	staff := event.Event{Identity: visitor, ChatID: group}
	a.Command(ctx, staff, CmdAnswer, "")
	a.Command(ctx, staff, CmdAnswer, "abc salom")
	assert.Equal(t, msgAnswerBadID, gw.Texts(group)[1])
	assert.Contains(t, gw.Texts(group)[0], "/answer &lt;user_id&gt;")

	a.Command(ctx, staff, CmdAnswer, "5  Mustaqillik ko'chasi 12")
	require.Len(t, gw.To(5), 1)
	assert.Equal(t, msgAnswerPrefix+"Mustaqillik ko&#39;chasi 12", gw.Texts(5)[0])
	last, _ := gw.Last(group)
	assert.Equal(t, fmt.Sprintf(msgAnswerSent, 5), last.Text)

	tickets, err := repo.RecentTickets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, storage.TicketAnswered, tickets[0].Status)
	require.NotNil(t, tickets[0].AnsweredBy)
	assert.Equal(t, int64(visitor), *tickets[0].AnsweredBy)
	require.NotNil(t, tickets[0].AnswerText)
	assert.Equal(t, "Mustaqillik ko'chasi 12", *tickets[0].AnswerText)

	// a second answer finds nothing pending and still reports delivery
	a.Command(ctx, staff, CmdAnswer, "5 yana")
	last, _ = gw.Last(group)
	assert.Equal(t, fmt.Sprintf(msgAnswerSent, 5), last.Text)
}

func TestAnswerDeliveryFailureKeepsTicketPending(t *testing.T) {
	a, gw, repo := setup(t)
	ctx := context.Background()
	_, err := repo.SaveTicket(ctx, &storage.Ticket{UserID: 9, Category: "🔄 Boshqa", Question: "Salom salom", Status: storage.TicketPending})
	require.NoError(t, err)

	gw.Fail = func(chatID int64, _ int) error {
		if chatID == 9 {
			return errors.New("Forbidden: bot was blocked by the user")
		}
		return nil
	}
	a.Command(ctx, private(boss), CmdAnswer, "9 javob")
	assert.Equal(t, []string{msgAnswerFailed}, gw.Texts(boss))

	tickets, err := repo.RecentTickets(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, storage.TicketPending, tickets[0].Status)
}

func TestDefaults(t *testing.T) {
	a := New(nil, nil, Options{})
	assert.Equal(t, DefaultRecentLimit, a.recent)
	assert.False(t, a.IsAdmin(0))
}
