package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wharfhq/wharfd/internal/client"
	"github.com/wharfhq/wharfd/internal/manifest"
	"github.com/wharfhq/wharfd/internal/protocol"
)

// Represents the 'wharfd build' command.
type BuildCmd struct {
	Path     string            `arg:"" optional:"" help:"Descriptor file or the directory containing it. Defaults to the working directory." type:"path"`
	Context  map[string]string `help:"Override a named context directory." placeholder:"NAME=PATH"`
	Output   string            `short:"o" help:"Output directory for the image archive." type:"path"`
	Platform string            `help:"Target platform, e.g. linux/amd64."`
	NoCache  bool              `help:"Ignore layer checkpoints and rebuild every step."`
}

// Executes the build command.
//
// The descriptor is loaded and validated locally, its context directories are
// resolved to absolute paths, and the result is shipped to the daemon. The
// connection stays open for the duration of the build; interrupting the CLI
// cancels the build on the daemon side.
func (c *BuildCmd) Run(ctx context.Context) error {
	descriptorPath, err := resolveDescriptorPath(c.Path)
	if err != nil {
		return err
	}

	m, err := manifest.Load(descriptorPath)
	if err != nil {
		return err
	}

	root := filepath.Dir(descriptorPath)

	contexts, err := resolveContexts(m, root, c.Context)
	if err != nil {
		return err
	}

	slog.Info("building image", "image", m.Image, "descriptor", descriptorPath)

	result, err := client.New(RootCmd.Socket).Build(&protocol.BuildRequest{
		Manifest: m,
		Root:     root,
		Contexts: contexts,
		Output:   c.Output,
		Platform: c.Platform,
		NoCache:  c.NoCache,
	})
	if err != nil {
		return err
	}

	slog.Info("image built", "image", result.Image, "output", result.Output)
	return nil
}

// Resolves the descriptor argument to an absolute file path.
//
// An empty argument uses the working directory; a directory argument is
// extended with the default descriptor filename.
func resolveDescriptorPath(arg string) (string, error) {
	path := arg
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = cwd
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("descriptor %s: %w", abs, err)
	}
	if info.IsDir() {
		abs = filepath.Join(abs, manifest.DefaultFilename)
	}

	return abs, nil
}

// Resolves the descriptor's named contexts to absolute directories.
//
// Declared paths are relative to the descriptor's directory. Overrides
// replace declared paths but cannot introduce contexts the descriptor does
// not declare; the daemon rejects copy sources naming undeclared contexts, so
// an unknown override is a CLI mistake worth failing early on.
func resolveContexts(m *manifest.Manifest, root string, overrides map[string]string) (map[string]string, error) {
	if len(m.Contexts) == 0 && len(overrides) == 0 {
		return nil, nil
	}

	contexts := make(map[string]string, len(m.Contexts))
	for name, dir := range m.Contexts {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		contexts[name] = filepath.Clean(dir)
	}

	for name, dir := range overrides {
		if _, declared := contexts[name]; !declared {
			return nil, fmt.Errorf("%w: descriptor declares no context %q", manifest.ErrManifest, name)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		contexts[name] = abs
	}

	return contexts, nil
}
