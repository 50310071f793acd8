// Package bot is the inbound router: it resolves every event to a global
// command, a menu button or the flow owning the conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"strings"
	"time"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/telegram"
	"github.com/geeksandijan/hrbot/core/telegram/commands"
	"github.com/geeksandijan/hrbot/internal/admin"
	"github.com/geeksandijan/hrbot/internal/catalog"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/session"
)

// Global commands.
const (
	CmdStart   = "start"
	CmdRestart = "restart"
)

// Observer counts inbound updates by payload kind.
type Observer interface {
	UpdateReceived(kind string)
}

// Options wires the router.
type Options struct {
	// Flows must include the application flow, which /start opens.
	Flows    []flow.Handler
	Admin    *admin.Admin
	Observer Observer
}

// Router dispatches events. It is safe for concurrent use; events of one
// identity are serialized by the session manager.
type Router struct {
	gw       gateway.Gateway
	sessions *session.Manager
	admin    *admin.Admin
	observer Observer
	registry *telegram.Registry

	flows  map[string]flow.Handler
	owners map[string]flow.Handler
}

// New validates opts and registers the command menu.
func New(gw gateway.Gateway, sessions *session.Manager, opts Options) (*Router, error) {
	if gw == nil || sessions == nil {
		return nil, errors.New("bot: gateway and session manager are required")
	}
	r := &Router{
		gw:       gw,
		sessions: sessions,
		admin:    opts.Admin,
		observer: opts.Observer,
		registry: telegram.NewRegistry(),
		flows:    make(map[string]flow.Handler, len(opts.Flows)),
		owners:   make(map[string]flow.Handler),
	}
	if r.admin == nil {
		r.admin = admin.New(gw, nil, admin.Options{})
	}
	for _, h := range opts.Flows {
		if _, dup := r.flows[h.Name()]; dup {
			return nil, fmt.Errorf("bot: flow %q registered twice", h.Name())
		}
		r.flows[h.Name()] = h
		for _, key := range h.Buttons() {
			if owner, dup := r.owners[key]; dup {
				return nil, fmt.Errorf("bot: button %q claimed by %s and %s", key, owner.Name(), h.Name())
			}
			r.owners[key] = h
		}
	}
	if _, ok := r.flows[session.FlowHR]; !ok {
		return nil, errors.New("bot: application flow is required")
	}
	if err := r.registerCommands(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) registerCommands() error {
	menu := []struct {
		name string
		cmd  commands.Command
	}{
		{CmdStart, commands.Command{Description: "Botni ishga tushirish"}},
		{CmdRestart, commands.Command{Description: "Botni qayta ishga tushirish"}},
		{admin.CmdLast, commands.Command{Description: "Oxirgi arizalar", AdminOnly: true}},
		{admin.CmdExport, commands.Command{Description: "Arizalarni Excelga eksport qilish", AdminOnly: true}},
		{admin.CmdTickets, commands.Command{Description: "Support savollari", AdminOnly: true}},
		{admin.CmdLeads, commands.Command{Description: "Kurs arizalari", AdminOnly: true}},
		{admin.CmdAnswer, commands.Command{Description: "Foydalanuvchiga javob berish", AdminOnly: true}},
	}
	for _, m := range menu {
		if err := r.registry.RegisterCommand("/"+m.name, m.cmd); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}
	return nil
}

// Registry returns the command menu published to Telegram.
func (r *Router) Registry() *telegram.Registry { return r.registry }

// Dispatch handles one event. Unexpected failures, panics included, are
// logged and answered with an apology; the error is still returned.
func (r *Router) Dispatch(ctx context.Context, ev event.Event) (err error) {
	if ev.Payload == nil {
		return nil
	}
	start := time.Now()
	kind := ev.Payload.Kind()
	if r.observer != nil {
		r.observer.UpdateReceived(kind)
	}

	name, run := r.resolve(ev)
	ctx = logger.WithHandler(ctx, name)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("bot: panic in %s: %v", name, p)
			logger.Error(ctx, "router", "panic",
				slog.String("handler", name),
				slog.String("stack", logger.SanitizeLimit(string(debug.Stack()), 2048)),
			)
		}
		if err != nil && !errors.Is(err, session.ErrClosed) {
			gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(catalog.Apology))
		}
		logHandled(ctx, name, kind, start, err)
	}()

	if run == nil {
		return nil
	}
	return run(ctx)
}

// resolve picks the handler for ev without side effects.
func (r *Router) resolve(ev event.Event) (string, func(context.Context) error) {
	group := ev.ChatID != 0 && ev.ChatID != ev.Identity

	if name, args, ok := ev.Command(); ok {
		if key, _, known := r.registry.LookupCommand(name); known {
			name = strings.TrimPrefix(key, "/")
			switch {
			case r.admin.Owns(name):
				return "admin." + name, func(ctx context.Context) error {
					r.admin.Command(ctx, ev, name, args)
					return nil
				}
			case group:
				return "group.ignored", nil
			default:
				return name, func(ctx context.Context) error { return r.start(ctx, ev) }
			}
		}
		// unknown commands are ordinary text
	}
	if group {
		return "group.ignored", nil
	}

	if b, ok := ev.Payload.(event.Button); ok {
		h, owned := r.owners[b.Key]
		if !owned {
			return "button.unknown", nil
		}
		return "button." + b.Key, func(ctx context.Context) error {
			return r.sessions.Update(ctx, ev.Identity, func(s *session.Session, _ bool) (session.Decision, error) {
				return h.Handle(ctx, ev, s)
			})
		}
	}

	if text, ok := ev.TextBody(); ok {
		if name, run := r.menu(ev, text); run != nil {
			return name, run
		}
	}
	return "step", func(ctx context.Context) error { return r.step(ctx, ev) }
}

func (r *Router) menu(ev event.Event, text string) (string, func(context.Context) error) {
	begin := func(flowName string) func(context.Context) error {
		return func(ctx context.Context) error { return r.begin(ctx, ev, flowName) }
	}
	switch text {
	case catalog.ButtonRestart:
		return "menu.restart", func(ctx context.Context) error { return r.start(ctx, ev) }
	case catalog.ButtonApply:
		return "menu.apply", begin(session.FlowHR)
	case catalog.ButtonCourses:
		return "menu.courses", begin(session.FlowCourses)
	case catalog.ButtonSupport:
		return "menu.support", begin(session.FlowSupport)
	case catalog.ButtonContacts:
		return "menu.contacts", func(ctx context.Context) error {
			gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(catalog.Contacts))
			return nil
		}
	case catalog.ButtonAdminLast, catalog.ButtonAdminExport:
		if r.admin.IsAdmin(ev.Identity) {
			return "admin.button", func(ctx context.Context) error {
				r.admin.Button(ctx, ev, text)
				return nil
			}
		}
	}
	return "", nil
}

// start greets with the main menu and opens the application flow.
func (r *Router) start(ctx context.Context, ev event.Event) error {
	menu := catalog.MainMenu()
	if r.admin.IsAdmin(ev.Identity) {
		menu = append(menu, catalog.AdminMenu()...)
	}
	gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(catalog.Greeting).WithReply(menu...))
	return r.begin(ctx, ev, session.FlowHR)
}

func (r *Router) begin(ctx context.Context, ev event.Event, flowName string) error {
	h, ok := r.flows[flowName]
	if !ok {
		logger.Warn(ctx, "router", "flow.missing", slog.String("flow", flowName))
		gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(catalog.Hint))
		return nil
	}
	return r.sessions.Update(ctx, ev.Identity, func(s *session.Session, _ bool) (session.Decision, error) {
		return h.Begin(ctx, ev, s)
	})
}

// step hands ev to the flow of the stored step, or answers outside any flow.
func (r *Router) step(ctx context.Context, ev event.Event) error {
	return r.sessions.Update(ctx, ev.Identity, func(s *session.Session, found bool) (session.Decision, error) {
		if !found || !s.Active() {
			r.idle(ctx, ev)
			return session.Leave, nil
		}
		h, ok := r.flows[s.Step.Flow()]
		if !ok {
			logger.Warn(ctx, "router", "session.orphaned", slog.String("step", s.Step.String()))
			r.idle(ctx, ev)
			return session.Drop, nil
		}
		return h.Handle(ctx, ev, s)
	})
}

// idle answers text that arrives with no active session.
func (r *Router) idle(ctx context.Context, ev event.Event) {
	if text, ok := ev.TextBody(); ok {
		if answer, hit := catalog.Answer(text); hit {
			gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(answer))
			return
		}
	}
	gateway.Reply(ctx, r.gw, ev.ChatID, gateway.Text(catalog.Hint))
}

func logHandled(ctx context.Context, handler, kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handler),
		slog.String("kind", kind),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Event(ctx, "router", level, "handler.handled", attrs...)
}

func errorCode(err error) string {
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
