// Package notify delivers staff notifications with bounded retries.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/retry"
	"github.com/geeksandijan/hrbot/core/telegram/sender"
	"github.com/geeksandijan/hrbot/internal/gateway"
)

// Recipient is a staff chat.
type Recipient struct {
	Name   string
	ChatID int64
}

// Observer is told about every recipient outcome.
type Observer interface {
	NotificationDelivered(kind, recipient string, err error)
}

// Options configures a Notifier.
type Options struct {
	// Routes maps a note kind to its recipients.
	Routes map[string][]Recipient
	// EscalateTo receives a short alert when a recipient could not be reached.
	// Zero disables escalation.
	EscalateTo int64
	Policy     retry.Policy
	// Queue runs Notify in the background. Nil spawns a goroutine per note.
	Queue    *sender.Dispatcher
	Observer Observer
}

// Notifier fans a note out to its recipients.
type Notifier struct {
	gw   gateway.Gateway
	opts Options
	wg   sync.WaitGroup
}

// New builds a notifier. A zero policy means three attempts one second apart.
func New(gw gateway.Gateway, opts Options) *Notifier {
	if opts.Policy.MaxAttempts <= 0 {
		opts.Policy = retry.Default()
	}
	return &Notifier{gw: gw, opts: opts}
}

// Result is the outcome for one recipient.
type Result struct {
	Recipient Recipient
	Attempts  int
	Err       error
}

// Report summarizes one delivery.
type Report struct {
	DeliveryID string
	Results    []Result
	Escalated  bool
}

// Failed returns the recipients that could not be reached.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Notify schedules note for delivery and returns immediately.
func (n *Notifier) Notify(ctx context.Context, note Note) {
	run := func(ctx context.Context) error {
		n.Deliver(ctx, note)
		return nil
	}
	if n.opts.Queue != nil {
		err := n.opts.Queue.Enqueue(ctx, "notify."+note.Kind, "", run)
		if err == nil {
			return
		}
		logger.Warn(ctx, "notify", "enqueue",
			slog.String("status", "fail"),
			slog.String("kind", note.Kind),
			logger.Err(err),
		)
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		_ = run(context.WithoutCancel(ctx))
	}()
}

// Close drains the queue and waits for background deliveries.
func (n *Notifier) Close() {
	if n.opts.Queue != nil {
		n.opts.Queue.Close()
	}
	n.wg.Wait()
}

// Deliver sends note to every recipient of its kind concurrently and blocks
// until all of them finished. Failures never propagate: they are logged,
// reported and escalated.
func (n *Notifier) Deliver(ctx context.Context, note Note) Report {
	report := Report{DeliveryID: uuid.NewString()}
	recipients := n.opts.Routes[note.Kind]
	if len(recipients) == 0 {
		logger.Warn(ctx, "notify", "deliver",
			slog.String("status", "skip"),
			slog.String("kind", note.Kind),
			slog.String("delivery_id", report.DeliveryID),
		)
		return report
	}

	start := time.Now()
	report.Results = make([]Result, len(recipients))
	var wg sync.WaitGroup
	for i, rcpt := range recipients {
		wg.Add(1)
		go func(i int, rcpt Recipient) {
			defer wg.Done()
			attempts, err := n.deliverOne(ctx, rcpt, note)
			report.Results[i] = Result{Recipient: rcpt, Attempts: attempts, Err: err}
			if n.opts.Observer != nil {
				n.opts.Observer.NotificationDelivered(note.Kind, rcpt.Name, err)
			}
		}(i, rcpt)
	}
	wg.Wait()

	failed := report.Failed()
	for _, res := range report.Results {
		attrs := []slog.Attr{
			slog.String("kind", note.Kind),
			slog.String("delivery_id", report.DeliveryID),
			slog.String("recipient", res.Recipient.Name),
			slog.Int("attempts", res.Attempts),
		}
		if res.Err != nil {
			logger.Error(ctx, "notify", "deliver", append(attrs,
				slog.String("status", "fail"),
				slog.String("err", sender.Redact(res.Err)),
				slog.String("error_kind", sender.ClassifyError(res.Err)),
			)...)
			continue
		}
		logger.Info(ctx, "notify", "deliver", append(attrs, slog.String("status", "ok"))...)
	}

	if len(failed) > 0 {
		report.Escalated = n.escalate(ctx, note, report.DeliveryID, failed)
	}
	logger.Debug(ctx, "notify", "deliver.summary",
		slog.String("delivery_id", report.DeliveryID),
		slog.Int("count", len(recipients)),
		slog.Int("failed", len(failed)),
		slog.Duration("duration", logger.Took(start)),
	)
	return report
}

// deliverOne sends the text and then each attachment, retrying every message
// on its own. The first message that exhausts its attempts aborts the rest.
func (n *Notifier) deliverOne(ctx context.Context, rcpt Recipient, note Note) (int, error) {
	total := 0
	for _, msg := range note.Messages() {
		msg := msg
		attempts, err := n.opts.Policy.Do(ctx, func(ctx context.Context) error {
			return n.gw.Send(ctx, rcpt.ChatID, msg)
		})
		total += attempts
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (n *Notifier) escalate(ctx context.Context, note Note, deliveryID string, failed []Result) bool {
	if n.opts.EscalateTo == 0 {
		return false
	}
	names := make([]string, 0, len(failed))
	for _, f := range failed {
		if f.Recipient.ChatID == n.opts.EscalateTo {
			logger.Warn(ctx, "notify", "escalate",
				slog.String("status", "skip"),
				slog.String("delivery_id", deliveryID),
				slog.String("recipient", f.Recipient.Name),
			)
			return false
		}
		names = append(names, f.Recipient.Name)
	}
	text := fmt.Sprintf("⚠️ Bildirishnoma yetkazilmadi (%s): %s\nID: %s", note.Kind, logger.Preview(names, 5), deliveryID)

	// single attempt: this is the side channel of last resort
	err := n.gw.Send(ctx, n.opts.EscalateTo, gateway.Text(text))
	if err != nil {
		logger.Error(ctx, "notify", "escalate",
			slog.String("status", "fail"),
			slog.String("delivery_id", deliveryID),
			slog.String("err", sender.Redact(err)),
		)
		return false
	}
	logger.Warn(ctx, "notify", "escalate",
		slog.String("status", "ok"),
		slog.String("delivery_id", deliveryID),
		slog.Int("failed", len(failed)),
	)
	return true
}
