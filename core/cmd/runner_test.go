package cmd

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/geeksandijan/hrbot/core/config"
	coretelegram "github.com/geeksandijan/hrbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	jobs   []Job
	closed atomic.Bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Background() []Job { return a.jobs }

func (a *fakeApp) Close() error {
	a.closed.Store(true)
	return nil
}

func baseOptions(app *fakeApp, run func(context.Context, coretelegram.RunOptions) error) Options {
	return Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram:    run,
		Signals:        []os.Signal{syscall.SIGUSR1},
	}
}

func TestRunStopsJobsWhenBotStops(t *testing.T) {
	var jobStopped atomic.Bool
	app := &fakeApp{jobs: []Job{{Name: "sweeper", Run: func(ctx context.Context) error {
		<-ctx.Done()
		jobStopped.Store(true)
		return nil
	}}}}

	var hooks int
	err := Run(baseOptions(app, func(ctx context.Context, opts coretelegram.RunOptions) error {
		require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
		require.NoError(t, opts.OnStop(ctx, coretelegram.Runtime{}))
		hooks++
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, hooks)
	assert.True(t, jobStopped.Load())
	assert.True(t, app.closed.Load())
}

func TestRunStopsBotWhenJobFails(t *testing.T) {
	app := &fakeApp{jobs: []Job{{Name: "metrics", Run: func(context.Context) error {
		return errors.New("address already in use")
	}}}}

	err := Run(baseOptions(app, func(ctx context.Context, _ coretelegram.RunOptions) error {
		<-ctx.Done()
		return nil
	}))
	require.ErrorContains(t, err, "metrics: address already in use")
	assert.True(t, app.closed.Load())
}

func TestRunRequiresHooks(t *testing.T) {
	require.Error(t, Run(Options{}))
	require.Error(t, Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil }}))

	opts := baseOptions(&fakeApp{}, nil)
	opts.LoadConfig = func(string) (ConfigCarrier, error) { return nil, errors.New("bad yaml") }
	require.ErrorContains(t, Run(opts), "bad yaml")
}
