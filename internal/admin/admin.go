// Package admin serves the staff commands: recent records, spreadsheet
// export and replies to support tickets.
package admin

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/telegram/format"
	"github.com/geeksandijan/hrbot/internal/catalog"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/report"
	"github.com/geeksandijan/hrbot/internal/storage"
	"github.com/geeksandijan/hrbot/internal/validate"
)

// Command names, without the slash.
const (
	CmdLast    = "last"
	CmdExport  = "export"
	CmdTickets = "support_tickets"
	CmdLeads   = "leads"
	CmdAnswer  = "answer"
)

// DefaultRecentLimit is how many applications /last lists.
const DefaultRecentLimit = 5

const listLimit = 10

// Store is the read side of the record store plus the ticket answer update.
type Store interface {
	RecentApplications(ctx context.Context, limit int, vacancy string) ([]storage.Application, error)
	AllApplications(ctx context.Context, vacancy string) ([]storage.Application, error)
	RecentTickets(ctx context.Context, limit int) ([]storage.Ticket, error)
	RecentLeads(ctx context.Context, limit int) ([]storage.Lead, error)
	MarkAnswered(ctx context.Context, userID, answeredBy int64, answer string) (int64, error)
}

// Options configures the allowlist.
type Options struct {
	Admins []int64
	// SupportGroupID may use /answer without being on the allowlist.
	SupportGroupID int64
	RecentLimit    int
}

// Admin handles allowlisted staff commands. Everyone else is ignored
// without a reply.
type Admin struct {
	gw           gateway.Gateway
	store        Store
	admins       map[int64]struct{}
	supportGroup int64
	recent       int
}

// New returns an Admin. Zero ids in opts.Admins are skipped.
func New(gw gateway.Gateway, store Store, opts Options) *Admin {
	admins := make(map[int64]struct{}, len(opts.Admins))
	for _, id := range opts.Admins {
		if id != 0 {
			admins[id] = struct{}{}
		}
	}
	recent := opts.RecentLimit
	if recent <= 0 {
		recent = DefaultRecentLimit
	}
	return &Admin{
		gw:           gw,
		store:        store,
		admins:       admins,
		supportGroup: opts.SupportGroupID,
		recent:       recent,
	}
}

// IsAdmin reports whether id is on the allowlist.
func (a *Admin) IsAdmin(id int64) bool {
	_, ok := a.admins[id]
	return ok
}

// Owns reports whether name is an admin command.
func (a *Admin) Owns(name string) bool {
	switch name {
	case CmdLast, CmdExport, CmdTickets, CmdLeads, CmdAnswer:
		return true
	}
	return false
}

// Command runs an admin command. It reports whether name was an admin
// command, including the case where the caller was silently refused.
func (a *Admin) Command(ctx context.Context, ev event.Event, name, args string) bool {
	if !a.Owns(name) {
		return false
	}
	if name == CmdAnswer {
		if a.IsAdmin(ev.Identity) || (a.supportGroup != 0 && ev.ChatID == a.supportGroup) {
			a.answer(ctx, ev, args)
		} else {
			a.refuse(ctx, ev, name)
		}
		return true
	}
	if !a.IsAdmin(ev.Identity) {
		a.refuse(ctx, ev, name)
		return true
	}

	switch name {
	case CmdLast:
		a.last(ctx, ev, validate.Capitalize(args))
	case CmdExport:
		a.export(ctx, ev, validate.Capitalize(args))
	case CmdTickets:
		a.tickets(ctx, ev)
	case CmdLeads:
		a.leads(ctx, ev)
	}
	return true
}

// Button handles the admin reply keyboard. Non-admins pressing the same
// labels fall through to ordinary text handling.
func (a *Admin) Button(ctx context.Context, ev event.Event, text string) bool {
	if !a.IsAdmin(ev.Identity) {
		return false
	}
	switch text {
	case catalog.ButtonAdminLast:
		a.last(ctx, ev, "")
	case catalog.ButtonAdminExport:
		a.export(ctx, ev, "")
	default:
		return false
	}
	return true
}

func (a *Admin) refuse(ctx context.Context, ev event.Event, name string) {
	logger.Debug(ctx, "admin", "refused",
		slog.String("command", name),
		slog.Int64("user_id", ev.Identity),
	)
}

func (a *Admin) last(ctx context.Context, ev event.Event, vacancy string) {
	if !validate.Vacancy(vacancy) {
		vacancy = ""
	}
	apps, err := a.store.RecentApplications(ctx, a.recent, vacancy)
	if err != nil {
		a.failed(ctx, ev, CmdLast, err)
		return
	}
	if len(apps) == 0 {
		a.reply(ctx, ev, gateway.Text(none(vacancy)))
		return
	}

	var b strings.Builder
	b.WriteString(msgLastHeader)
	if vacancy != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(vacancy))
	}
	b.WriteString(":\n\n")
	for _, app := range apps {
		fmt.Fprintf(&b, msgLastLine,
			html.EscapeString(app.Name),
			html.EscapeString(app.Phone),
			html.EscapeString(app.Vacancy),
			html.EscapeString(format.DerefString(app.Subject, "-")),
			html.EscapeString(app.Experience),
			html.EscapeString(format.DerefString(app.Workplace, "-")),
		)
	}
	a.reply(ctx, ev, gateway.Text(b.String()))
	logger.Info(ctx, "admin", CmdLast, slog.String("vacancy", vacancy), slog.Int("count", len(apps)))
}

func (a *Admin) export(ctx context.Context, ev event.Event, vacancy string) {
	apps, err := a.store.AllApplications(ctx, vacancy)
	if err != nil {
		a.failed(ctx, ev, CmdExport, err)
		return
	}
	if len(apps) == 0 {
		a.reply(ctx, ev, gateway.Text(none(vacancy)))
		return
	}
	data, err := report.Applications(apps)
	if err != nil {
		a.failed(ctx, ev, CmdExport, err)
		return
	}

	// an unknown filter was ignored by the store, so the file holds everything
	scope := vacancy
	if !validate.Vacancy(scope) {
		scope = ""
	}
	name := report.FileName(scope)
	a.reply(ctx, ev, gateway.Message{
		Attachment: &gateway.Attachment{
			Kind: gateway.AttachDocument,
			File: &gateway.File{Name: name, Data: data},
		},
	})
	logger.Info(ctx, "admin", CmdExport,
		slog.String("vacancy", scope),
		slog.Int("count", len(apps)),
		slog.Int("bytes", len(data)),
	)
}

func (a *Admin) tickets(ctx context.Context, ev event.Event) {
	list, err := a.store.RecentTickets(ctx, listLimit)
	if err != nil {
		a.failed(ctx, ev, CmdTickets, err)
		return
	}
	if len(list) == 0 {
		a.reply(ctx, ev, gateway.Text(msgNoTickets))
		return
	}
	var b strings.Builder
	b.WriteString(msgTicketsHeader)
	for _, t := range list {
		fmt.Fprintf(&b, msgTicketLine,
			t.ID,
			format.Handle(format.DerefString(t.Username, "")),
			t.UserID,
			html.EscapeString(t.Category),
			html.EscapeString(cut(t.Question, questionCutoff)),
			t.CreatedAt.Format(dateLayout),
		)
	}
	a.reply(ctx, ev, gateway.Text(b.String()))
}

func (a *Admin) leads(ctx context.Context, ev event.Event) {
	list, err := a.store.RecentLeads(ctx, listLimit)
	if err != nil {
		a.failed(ctx, ev, CmdLeads, err)
		return
	}
	if len(list) == 0 {
		a.reply(ctx, ev, gateway.Text(msgNoLeads))
		return
	}
	var b strings.Builder
	b.WriteString(msgLeadsHeader)
	for _, l := range list {
		fmt.Fprintf(&b, msgLeadLine,
			format.Handle(format.DerefString(l.Username, "")),
			l.UserID,
			html.EscapeString(l.Course),
			html.EscapeString(l.Tariff),
			html.EscapeString(l.Phone),
			l.CreatedAt.Format(dateLayout),
		)
	}
	a.reply(ctx, ev, gateway.Text(b.String()))
}

// answer delivers "/answer <user_id> <text>" and closes the user's
// pending tickets.
func (a *Admin) answer(ctx context.Context, ev event.Event, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		a.reply(ctx, ev, gateway.Text(html.EscapeString(msgAnswerUsage)))
		return
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		a.reply(ctx, ev, gateway.Text(msgAnswerBadID))
		return
	}
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), fields[0]))

	if err := a.gw.Send(ctx, userID, gateway.Text(msgAnswerPrefix+html.EscapeString(text))); err != nil {
		logger.Warn(ctx, "admin", CmdAnswer,
			slog.String("status", "fail"),
			slog.Int64("recipient", userID),
			logger.Err(err),
		)
		a.reply(ctx, ev, gateway.Text(msgAnswerFailed))
		return
	}

	closed, err := a.store.MarkAnswered(ctx, userID, ev.Identity, text)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Debug(ctx, "admin", CmdAnswer, slog.String("outcome", "no_pending"), slog.Int64("recipient", userID))
	case err != nil:
		logger.Error(ctx, "admin", CmdAnswer, slog.String("status", "fail"), logger.Err(err))
	default:
		logger.Info(ctx, "admin", CmdAnswer,
			slog.String("status", "ok"),
			slog.Int64("recipient", userID),
			slog.Int64("count", closed),
		)
	}
	a.reply(ctx, ev, gateway.Text(fmt.Sprintf(msgAnswerSent, userID)))
}

func (a *Admin) failed(ctx context.Context, ev event.Event, name string, err error) {
	logger.Error(ctx, "admin", name, slog.String("status", "fail"), logger.Err(err))
	a.reply(ctx, ev, gateway.Text(msgQueryFailed))
}

func (a *Admin) reply(ctx context.Context, ev event.Event, msg gateway.Message) {
	gateway.Reply(ctx, a.gw, ev.ChatID, msg)
}

func none(vacancy string) string {
	if vacancy == "" {
		return msgNone
	}
	return fmt.Sprintf(msgNoneFor, html.EscapeString(vacancy))
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
