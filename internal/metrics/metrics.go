// Package metrics exposes bot counters in the Prometheus format together
// with a health endpoint.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrbot"

// Metrics owns a private registry. A nil *Metrics accepts every call and
// records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	updates       *prometheus.CounterVec
	saved         *prometheus.CounterVec
	sent          *prometheus.CounterVec
	notifications *prometheus.CounterVec
	swept         prometheus.Counter
}

// New registers the bot collectors plus the Go runtime and process ones.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound updates by payload kind.",
		}, []string{"kind"}),
		saved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Record store inserts by record kind and status.",
		}, []string{"kind", "status"}),
		sent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Outbound Telegram sends by content kind and status.",
		}, []string{"kind", "status"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Staff notification outcomes by note kind, recipient and status.",
		}, []string{"kind", "recipient", "status"}),
		swept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions removed by the sweeper.",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) UpdateReceived(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordSaved(kind string, err error) {
	if m == nil {
		return
	}
	m.saved.WithLabelValues(kind, status(err)).Inc()
}

func (m *Metrics) MessageSent(kind string, err error) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(kind, status(err)).Inc()
}

func (m *Metrics) NotificationDelivered(kind, recipient string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, recipient, status(err)).Inc()
}

func (m *Metrics) SessionsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}

func status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Check is a named readiness probe run by /healthz.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Handler serves /metrics and /healthz. /healthz answers 503 with the
// name of the first failing check.
func (m *Metrics) Handler(checks ...Check) http.Handler {
	mux := http.NewServeMux()
	if m != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for _, c := range checks {
			if c.Run == nil {
				continue
			}
			if err := c.Run(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"fail","check":` + strconv.Quote(c.Name) + `}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
