package build

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/wharfhq/wharfd/internal/manifest"
)

// Filename of the optional ignore file at a context root.
const ignoreFilename = ".wharfignore"

// The set of host directories a build may copy from.
//
// The primary context is the directory holding the descriptor; named
// contexts are the descriptor's declared auxiliary trees, resolved to
// absolute paths by the caller. Copy sources never resolve outside their
// context directory.
type contextSet struct {
	root  string            // Primary build context directory.
	named map[string]string // Named context directories.
}

// Creates a context set and verifies every directory exists.
//
// A missing directory is a deterministic build failure: the build aborts
// before any container is started rather than producing an image with the
// tree silently absent.
func newContextSet(root string, named map[string]string) (*contextSet, error) {
	cs := &contextSet{root: root, named: named}

	if err := checkContextDir("build context", root); err != nil {
		return nil, err
	}
	for name, dir := range named {
		if err := checkContextDir(fmt.Sprintf("context %q", name), dir); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// Verifies that a context directory exists and is a directory.
func checkContextDir(label, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContext, label, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s: %s is not a directory", ErrContext, label, dir)
	}
	return nil
}

// Resolves a copy source to a host path and the context it belongs to.
//
// A "name:path" source resolves inside the named context; anything else
// resolves inside the primary context. The returned context directory is
// where ignore rules are loaded from.
func (cs *contextSet) resolveSource(src string) (contextDir, hostPath string, err error) {
	dir := cs.root
	rel := src

	if name, rest, ok := manifest.SplitContextSource(src); ok {
		named, declared := cs.named[name]
		if !declared {
			return "", "", fmt.Errorf("%w: unknown context %q", ErrContext, name)
		}
		dir = named
		rel = rest
	}

	return dir, filepath.Join(dir, rel), nil
}

// Loads the ignore rules for a context directory.
//
// Returns nil when the context has no ignore file; a nil matcher ignores
// nothing.
func loadIgnore(contextDir string) *ignore.GitIgnore {
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(contextDir, ignoreFilename))
	if err != nil {
		return nil
	}
	return matcher
}

// Walks a file tree rooted at dir in deterministic order, skipping entries
// matched by the ignore rules.
//
// fn receives the path relative to dir (slash-separated) and the entry.
// Ignored directories are skipped entirely.
func walkContext(dir string, ign *ignore.GitIgnore, fn func(rel string, path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel != "." && ign != nil && ign.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		return fn(rel, path, d)
	})
}
