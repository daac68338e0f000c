package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/wharfhq/wharfd/internal/cache"
	"github.com/wharfhq/wharfd/internal/manifest"
	"github.com/wharfhq/wharfd/internal/runtime"
)

// Holds shared state for executing one descriptor.
type build struct {
	rt       *runtime.Runtime   // Container runtime for image and container operations.
	m        *manifest.Manifest // Descriptor under execution.
	cs       *contextSet        // Verified build context directories.
	store    *cache.Store       // Checkpoint store.
	output   string             // Output directory for the final image archive.
	platform string             // Target platform.
	noCache  bool               // Whether checkpoint reuse is disabled.
}

// Executes the descriptor end-to-end.
//
// The build container is started from the deepest cached checkpoint (or the
// pulled base image when none applies), skipped steps replay only their
// persistent modifiers, and every executed operation is checkpointed. The
// container is destroyed when the build completes, successfully or not.
func (b *build) run(ctx context.Context) (*Result, error) {
	keys, err := stepChain(b.m, b.cs, b.platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	prefix := b.cachedPrefix(keys)

	ctr, err := b.start(ctx, keys, prefix)
	if err != nil {
		return nil, err
	}
	defer ctr.Destroy(ctx)

	state := newStepState(b.m.Workdir)

	for i, step := range b.m.Steps {
		if i <= prefix {
			// The filesystem effects are already in the checkpoint; only
			// persistent modifiers carry forward.
			if step.Run == "" && step.Copy == "" {
				state.apply(step)
			}
			continue
		}

		slog.Info(fmt.Sprintf("step %d/%d", i+1, len(b.m.Steps)))

		if err := executeStep(ctx, ctr, b.cs, step, state); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrBuild, i+1, err)
		}

		if step.Run != "" || step.Copy != "" {
			b.checkpoint(ctx, ctr, keys[i])
		}
	}

	if err := ctr.Stop(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	if err := ctr.Export(ctx, b.output, b.imageConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	return &Result{Image: b.m.Image, Output: b.output}, nil
}

// Returns the index of the deepest step whose checkpoint is committed, or
// -1 when no checkpoint applies.
//
// Only step keys with an archive in the store count; modifier steps never
// commit one, so resumption always lands on an operation boundary.
func (b *build) cachedPrefix(keys []digest.Digest) int {
	if b.noCache {
		return -1
	}

	for i := len(keys) - 1; i >= 0; i-- {
		if b.store.Has(keys[i]) {
			slog.Debug("cache hit", "step", i+1, "key", keys[i])
			return i
		}
	}
	return -1
}

// Starts the build container from the cached checkpoint, or pulls the base
// image and starts from it when nothing is cached.
func (b *build) start(ctx context.Context, keys []digest.Digest, prefix int) (*runtime.Container, error) {
	id := b.containerID()

	if prefix >= 0 {
		ctr, err := b.rt.StartFromArchive(ctx, b.store.Path(keys[prefix]), id, b.platform)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
		return ctr, nil
	}

	if err := b.rt.PullImage(ctx, b.m.From, b.platform); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	ctr, err := b.rt.StartFromImage(ctx, b.m.From, id, b.platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return ctr, nil
}

// Commits the container's current filesystem state to the checkpoint store.
//
// Checkpointing is an optimization for later builds; a failure is logged
// and the build continues.
func (b *build) checkpoint(ctx context.Context, ctr *runtime.Container, key digest.Digest) {
	stage, err := b.store.Stage()
	if err != nil {
		slog.Warn("checkpoint staging failed", "key", key, "error", err)
		return
	}

	if err := ctr.Checkpoint(ctx, stage); err != nil {
		b.store.Discard(stage)
		slog.Warn("checkpoint export failed", "key", key, "error", err)
		return
	}

	if err := b.store.Commit(key, stage); err != nil {
		slog.Warn("checkpoint commit failed", "key", key, "error", err)
	}
}

// Returns the launch configuration derived from the descriptor.
func (b *build) imageConfig() runtime.ImageConfig {
	cfg := runtime.ImageConfig{
		Command:    b.m.Command,
		WorkingDir: b.m.Workdir,
		Env:        sortedEnv(b.m.Env),
	}
	if b.m.Port > 0 {
		cfg.Ports = []string{fmt.Sprintf("%d/tcp", b.m.Port)}
	}
	return cfg
}

// Returns a unique container ID for this build, scoped to the image and
// platform.
func (b *build) containerID() string {
	return fmt.Sprintf("%s-%s-build", b.m.Image, platformSlug(b.platform))
}

// Converts a platform string to an identifier-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
