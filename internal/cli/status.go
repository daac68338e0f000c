package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wharfhq/wharfd/internal/client"
)

// Represents the 'wharfd status' command.
type StatusCmd struct{}

// Executes the status command.
//
// A daemon that is not listening is reported as stopped rather than as an
// error.
func (c *StatusCmd) Run(ctx context.Context) error {
	result, err := client.New(RootCmd.Socket).Status()
	if errors.Is(err, client.ErrNotRunning) {
		fmt.Println("wharfd is not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("wharfd %s\npid:    %d\nuptime: %s\nbuilds: %d\n",
		result.Version, result.Pid, result.Uptime, result.Builds)
	return nil
}

// Represents the 'wharfd shutdown' command.
type ShutdownCmd struct{}

// Executes the shutdown command.
func (c *ShutdownCmd) Run(ctx context.Context) error {
	if err := client.New(RootCmd.Socket).Shutdown(); err != nil {
		return err
	}

	slog.Info("shutdown requested")
	return nil
}
