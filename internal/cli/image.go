package cli

import (
	"context"
	"log/slog"

	"github.com/wharfhq/wharfd/internal/client"
)

// Represents the 'wharfd rmi' command.
type RmiCmd struct {
	Image string `arg:"" help:"Name of a previously built image."`
}

// Executes the rmi command.
//
// Removes the image's containers, its containerd records, and its exported
// archive. Layer checkpoints are untouched; a rebuild of the same descriptor
// still resumes from the cache.
func (c *RmiCmd) Run(ctx context.Context) error {
	if err := client.New(RootCmd.Socket).ImageDestroy(c.Image); err != nil {
		return err
	}

	slog.Info("image destroyed", "image", c.Image)
	return nil
}

// Represents the 'wharfd prune' command.
type PruneCmd struct{}

// Executes the prune command.
func (c *PruneCmd) Run(ctx context.Context) error {
	if err := client.New(RootCmd.Socket).Prune(); err != nil {
		return err
	}

	slog.Info("layer checkpoints removed")
	return nil
}
