package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/wharfhq/wharfd/internal/cache"
	"github.com/wharfhq/wharfd/internal/manifest"
	"github.com/wharfhq/wharfd/internal/paths"
	"github.com/wharfhq/wharfd/internal/runtime"
)

// Controls descriptor execution.
type Options struct {
	Manifest *manifest.Manifest // Build descriptor to execute.
	Root     string             // Build context directory, root for resolving copy sources.
	Contexts map[string]string  // Named context directories, resolved to absolute paths.
	Output   string             // Directory for the exported image.
	Platform string             // Target platform (e.g., "linux/amd64"). Empty uses the host.
	Cache    *cache.Store       // Checkpoint store. Nil uses the default XDG store.
	NoCache  bool               // Skip checkpoint reuse; fresh checkpoints are still committed.
}

// Returned after successful descriptor execution.
type Result struct {
	Image  string // Image name from the descriptor.
	Output string // Directory containing the exported image.
}

// Executes a build descriptor against the container runtime.
//
// Steps run strictly in declaration order inside a single build container;
// the first failure aborts the build and no usable image is produced. The
// longest step prefix with a committed checkpoint is resumed from the cache
// instead of being re-executed. The final container state is exported to
// the output directory with the descriptor's launch configuration applied.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = "linux/" + goruntime.GOARCH
	}

	slog.Info("executing descriptor",
		"image", opts.Manifest.Image,
		"output", opts.Output,
		"steps", len(opts.Manifest.Steps),
		"platform", opts.Platform,
	)

	cs, err := newContextSet(opts.Root, opts.Contexts)
	if err != nil {
		return nil, err
	}

	store := opts.Cache
	if store == nil {
		store = cache.New("")
	}

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileSystemOperation, err)
	}

	b := &build{
		rt:       rt,
		m:        opts.Manifest,
		cs:       cs,
		store:    store,
		output:   opts.Output,
		platform: opts.Platform,
		noCache:  opts.NoCache,
	}

	return b.run(ctx)
}
