// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/geeksandijan/hrbot/internal/gateway"
)

// Sent is one recorded delivery.
type Sent struct {
	ChatID int64
	Msg    gateway.Message
}

// Recorder records every message. Fail, when set, decides per call whether
// the delivery errors; failed deliveries are counted but not recorded.
type Recorder struct {
	mu       sync.Mutex
	sent     []Sent
	attempts map[int64]int
	Fail     func(chatID int64, attempt int) error
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{attempts: make(map[int64]int)}
}

func (r *Recorder) Send(_ context.Context, chatID int64, msg gateway.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempts == nil {
		r.attempts = make(map[int64]int)
	}
	r.attempts[chatID]++
	if r.Fail != nil {
		if err := r.Fail(chatID, r.attempts[chatID]); err != nil {
			return err
		}
	}
	r.sent = append(r.sent, Sent{ChatID: chatID, Msg: msg})
	return nil
}

// All returns a copy of every successful delivery in order.
func (r *Recorder) All() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// To returns the messages delivered to chatID.
func (r *Recorder) To(chatID int64) []gateway.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []gateway.Message
	for _, s := range r.sent {
		if s.ChatID == chatID {
			out = append(out, s.Msg)
		}
	}
	return out
}

// Texts returns the texts delivered to chatID.
func (r *Recorder) Texts(chatID int64) []string {
	msgs := r.To(chatID)
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

// Last returns the most recent message delivered to chatID.
func (r *Recorder) Last(chatID int64) (gateway.Message, bool) {
	msgs := r.To(chatID)
	if len(msgs) == 0 {
		return gateway.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Attempts returns how many sends were tried for chatID, failed ones included.
func (r *Recorder) Attempts(chatID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[chatID]
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.attempts = make(map[int64]int)
}
