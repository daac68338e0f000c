package runtime

import (
	"context"
	"fmt"
	"log/slog"

	containerd "github.com/containerd/containerd/v2/client"
)

// Starts a serve container from a previously imported image tag.
//
// The image's configured command becomes the container's task: the process
// runs in the foreground of the container, and when it exits the container
// is stopped and its exit code is observable through [Container.Status].
// No restart or supervision is applied.
//
// The container shares the host network namespace, so whatever port the
// process binds is reachable on the host immediately. Any stale container
// with the same ID is cleaned up first.
func (rt *Runtime) StartServe(ctx context.Context, tag, id string) (*Container, error) {
	platform := defaultPlatform()

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr, nil); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	slog.Info("serve container started", "id", id, "image", tag)
	return c, nil
}
