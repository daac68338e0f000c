package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/wharfhq/wharfd/internal/paths"
)

// Filename of the OCI archive inside each checkpoint directory.
const archiveFilename = "image.tar"

var ErrCache = errors.New("cache operation failed")

// A content-addressed store of build checkpoints.
//
// Each checkpoint is the OCI archive of a build container committed after a
// completed step, stored under the digest of the step chain that produced
// it. Checkpoints are immutable once committed; there is no eviction beyond
// [Store.Prune].
type Store struct {
	root string // Directory holding one subdirectory per checkpoint.
}

// Creates a store rooted at dir.
//
// An empty dir uses the XDG layer cache path.
func New(dir string) *Store {
	if dir == "" {
		dir = paths.LayerCache()
	}
	return &Store{root: dir}
}

// Returns the archive path for a checkpoint key.
//
// The path is returned regardless of whether the checkpoint exists; callers
// check with [Store.Has] first.
func (s *Store) Path(key digest.Digest) string {
	return filepath.Join(s.root, key.Encoded(), archiveFilename)
}

// Reports whether a committed checkpoint exists for the key.
func (s *Store) Has(key digest.Digest) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && info.Mode().IsRegular()
}

// Creates a staging directory for writing a new checkpoint archive.
//
// The directory lives next to the final location so that [Store.Commit] can
// rename it atomically.
func (s *Store) Stage() (string, error) {
	if err := os.MkdirAll(s.root, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCache, err)
	}

	dir, err := os.MkdirTemp(s.root, "stage-")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCache, err)
	}
	return dir, nil
}

// Commits a staged checkpoint under the given key.
//
// The staging directory must contain the finished archive. The rename is
// atomic, so a concurrent build either sees the complete checkpoint or none.
// A checkpoint already committed under the key wins; the stage is discarded.
func (s *Store) Commit(key digest.Digest, stage string) error {
	if _, err := os.Stat(filepath.Join(stage, archiveFilename)); err != nil {
		os.RemoveAll(stage)
		return fmt.Errorf("%w: stage missing archive: %v", ErrCache, err)
	}

	final := filepath.Join(s.root, key.Encoded())
	if err := os.Rename(stage, final); err != nil {
		os.RemoveAll(stage)
		if s.Has(key) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrCache, err)
	}
	return nil
}

// Discards a staging directory without committing it.
func (s *Store) Discard(stage string) {
	os.RemoveAll(stage)
}

// Removes every checkpoint in the store.
func (s *Store) Prune() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("%w: %v", ErrCache, err)
	}
	return nil
}
