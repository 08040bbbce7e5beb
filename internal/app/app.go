package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huecmd/internal/command"
	"github.com/dokzlo13/huecmd/internal/config"
	"github.com/dokzlo13/huecmd/internal/hue"
	"github.com/dokzlo13/huecmd/internal/queue"
)

// App is the application container: it builds the bridge client and the
// queue factory from the configuration and hands them to the dispatcher.
type App struct {
	cfg        *config.Config
	bridge     *hue.Client
	dispatcher *command.Dispatcher
}

// New creates a new App writing command output to out.
func New(cfg *config.Config, out io.Writer) *App {
	bridge := hue.NewClient(cfg.Hue.BaseURL, cfg.Hue.Timeout.Duration(), cfg.Hue.RateLimitRPS)

	a := &App{
		cfg:    cfg,
		bridge: bridge,
	}
	a.dispatcher = command.NewDispatcher(command.Deps{
		Config:    cfg,
		Bridge:    bridge,
		OpenQueue: a.openQueue,
		Discover:  hue.Discover,
		Out:       out,
	})
	return a
}

// Run executes the command given by args.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.dispatcher.Run(ctx, args)
}

// Close releases the bridge connections.
func (a *App) Close() {
	a.bridge.Close()
}

func (a *App) openQueue(ctx context.Context) (queue.Queue, func(), error) {
	q, release, err := OpenQueue(ctx, a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open queue: %w", err)
	}
	return q, release, nil
}

// SignalContext creates a context that is cancelled when SIGINT or SIGTERM is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
