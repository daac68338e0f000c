package cli

import (
	"context"
	"log/slog"

	"github.com/wharfhq/wharfd/internal/client"
	"github.com/wharfhq/wharfd/internal/protocol"
)

// Represents the 'wharfd run' command.
type RunCmd struct {
	Image string `arg:"" help:"Name of a previously built image."`
	Name  string `short:"n" help:"Container name. Defaults to the image name."`
}

// Executes the run command.
//
// The daemon imports the image's exported archive and starts a serve
// container running the command baked into the image.
func (c *RunCmd) Run(ctx context.Context) error {
	result, err := client.New(RootCmd.Socket).Run(&protocol.RunRequest{
		Image: c.Image,
		Name:  c.Name,
	})
	if err != nil {
		return err
	}

	slog.Info("container started", "container", result.Container)
	return nil
}
