package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wharfhq/wharfd/internal/client"
	"github.com/wharfhq/wharfd/internal/protocol"
)

// Represents the 'wharfd ps' command.
type PsCmd struct {
	Container string `arg:"" help:"Container ID."`
}

// Executes the ps command.
func (c *PsCmd) Run(ctx context.Context) error {
	result, err := client.New(RootCmd.Socket).ContainerStatus(c.Container)
	if err != nil {
		return err
	}

	if result.State == protocol.ContainerStopped {
		fmt.Printf("%s\t%s\texit code %d\n", c.Container, result.State, result.ExitCode)
		return nil
	}

	fmt.Printf("%s\t%s\n", c.Container, result.State)
	return nil
}

// Represents the 'wharfd stop' command.
type StopCmd struct {
	Container string `arg:"" help:"Container ID."`
}

// Executes the stop command.
func (c *StopCmd) Run(ctx context.Context) error {
	if err := client.New(RootCmd.Socket).ContainerStop(c.Container); err != nil {
		return err
	}

	slog.Info("container stopped", "container", c.Container)
	return nil
}

// Represents the 'wharfd rm' command.
type RmCmd struct {
	Container string `arg:"" help:"Container ID."`
}

// Executes the rm command.
func (c *RmCmd) Run(ctx context.Context) error {
	if err := client.New(RootCmd.Socket).ContainerDestroy(c.Container); err != nil {
		return err
	}

	slog.Info("container destroyed", "container", c.Container)
	return nil
}

// Represents the 'wharfd exec' command.
type ExecCmd struct {
	Container string   `arg:"" help:"Container ID."`
	Args      []string `arg:"" passthrough:"" help:"Command and arguments."`
}

// Executes the exec command.
//
// The command's output is relayed to the CLI's stdout and stderr, and its
// exit code becomes the CLI's exit code.
func (c *ExecCmd) Run(ctx context.Context) error {
	result, err := client.New(RootCmd.Socket).Exec(c.Container, c.Args)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, result.Stdout)
	fmt.Fprint(os.Stderr, result.Stderr)

	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
	return nil
}
