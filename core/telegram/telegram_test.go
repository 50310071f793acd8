package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/geeksandijan/hrbot/core/config"
	"github.com/geeksandijan/hrbot/core/retry"
	"github.com/geeksandijan/hrbot/core/telegram/commands"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Description: "Boshlash", Aliases: []string{"restart"}}))
	require.NoError(t, reg.RegisterCommand("/last", commands.Command{Description: "Oxirgi arizalar", AdminOnly: true}))
	require.Error(t, reg.RegisterCommand("start", commands.Command{Description: "x"}))
	require.Error(t, reg.RegisterCommand("/start", commands.Command{Description: "x"}))
	require.Error(t, reg.RegisterCommand("/empty", commands.Command{}))

	key, _, ok := reg.LookupCommand("RESTART")
	require.True(t, ok)
	assert.Equal(t, "/start", key)
	_, cmd, ok := reg.LookupCommand("last")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)
	_, _, ok = reg.LookupCommand("/nope")
	assert.False(t, ok)

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Boshlash"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)
}

type commandSink struct{ got []interface{} }

func (s *commandSink) SetCommands(opts ...interface{}) error {
	s.got = append(s.got, opts...)
	return nil
}

func TestSetupCommands(t *testing.T) {
	reg := NewRegistry()
	sink := &commandSink{}
	SetupCommands(sink, reg)
	assert.Empty(t, sink.got)

	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Description: "Boshlash"}))
	SetupCommands(sink, reg)
	require.Len(t, sink.got, 1)
	assert.Equal(t, []tele.Command{{Text: "start", Description: "Boshlash"}}, sink.got[0])
}

func TestBuildPoller(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = "WEBHOOK"
	cfg.Webhook = coreconfig.WebhookConfig{URL: "https://hr.example.uz/bot", Listen: "0.0.0.0", Port: 8443, Secret: "s3cret"}

	wh, ok := BuildPoller(PollerOptionsFrom(cfg)).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "s3cret", wh.SecretToken)
	assert.Equal(t, "https://hr.example.uz/bot", wh.Endpoint.PublicURL)

	lp, ok := BuildPoller(PollerOptions{RunMode: coreconfig.RunModeLongpoll}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)
}

type flakyTransport struct {
	failures int
	calls    int
	bodies   []string
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	}
	if f.calls <= f.failures {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
}

func TestRetryTransport(t *testing.T) {
	base := &flakyTransport{failures: 2}
	rt := &retryTransport{base: base, policy: retry.Policy{MaxAttempts: 4}}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/getMe", strings.NewReader("a=1"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 3, base.calls)
	assert.Equal(t, []string{"a=1", "a=1", "a=1"}, base.bodies)

	base = &flakyTransport{failures: 10}
	rt = &retryTransport{base: base, policy: retry.Policy{MaxAttempts: 2}}
	req, err = http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 2, base.calls)
}

func TestBuildHTTPClientStretchesForLongPolls(t *testing.T) {
	assert.Equal(t, defaultClientTimeout, BuildHTTPClient(10*time.Second).Timeout)
	assert.Equal(t, 70*time.Second, BuildHTTPClient(60*time.Second).Timeout)
}
