package cli

import (
	"context"
	"log/slog"

	"github.com/wharfhq/wharfd/internal/server"
)

// Represents the 'wharfd start' command.
type StartCmd struct{}

// Executes the start command.
//
// Starts the daemon on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM).
func (c *StartCmd) Run(ctx context.Context) error {
	cfg := server.Config{
		SocketPath: RootCmd.Socket,
	}
	if err := cfg.LoadEnv(); err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("wharfd is running")

	// The daemon stops on its own when a shutdown command arrives; a signal
	// stops it from here. Stop is idempotent, so the overlap is harmless.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case <-srv.Done():
	}

	return srv.Stop()
}
