package build

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/wharfhq/wharfd/internal/manifest"
)

// Computes the cache key for every step of a descriptor.
//
// Key i covers everything that determines the filesystem state after step i:
// the base image reference, the target platform, every earlier step, the
// step's own fields, and, for copy steps, the content of the copied file
// tree. An edit to the application source therefore changes only the keys at
// and after the step that copies it, leaving earlier checkpoints (such as a
// dependency install driven by an unchanged manifest file) reusable.
func stepChain(m *manifest.Manifest, cs *contextSet, platform string) ([]digest.Digest, error) {
	keys := make([]digest.Digest, len(m.Steps))

	prev := digest.FromString(strings.Join([]string{"from", m.From, platform}, "\x00"))
	for i, step := range m.Steps {
		key, err := stepKey(prev, step, cs)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		keys[i] = key
		prev = key
	}

	return keys, nil
}

// Computes the cache key for a single step given the previous key.
func stepKey(prev digest.Digest, step manifest.Step, cs *contextSet) (digest.Digest, error) {
	var b strings.Builder
	b.WriteString(prev.String())

	switch {
	case step.Run != "":
		b.WriteString("\x00run\x00")
		b.WriteString(step.Run)

	case step.Copy != "":
		parts := strings.Fields(step.Copy)
		if len(parts) != 2 {
			return "", fmt.Errorf("%w: copy %q must be \"src dest\"", ErrCopy, step.Copy)
		}

		tree, err := sourceDigest(cs, parts[0])
		if err != nil {
			return "", err
		}

		b.WriteString("\x00copy\x00")
		b.WriteString(parts[1])
		b.WriteString("\x00")
		b.WriteString(tree.String())

	default:
		b.WriteString("\x00mod")
	}

	b.WriteString("\x00")
	b.WriteString(step.Shell)
	b.WriteString("\x00")
	b.WriteString(step.Workdir)

	for _, entry := range sortedEnv(step.Env) {
		b.WriteString("\x00")
		b.WriteString(entry)
	}

	return digest.FromString(b.String()), nil
}

// Computes the content digest of a copy source.
//
// Directories hash every non-ignored file in walk order: relative path,
// mode bits, and content digest. Single files hash their mode and content.
// File timestamps and ownership are deliberately not part of the digest.
func sourceDigest(cs *contextSet, src string) (digest.Digest, error) {
	contextDir, hostPath, err := cs.resolveSource(src)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(hostPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopy, err)
	}

	if !info.IsDir() {
		return fileEntryDigest("", hostPath, info.Mode())
	}

	var b strings.Builder
	err = walkContext(hostPath, loadIgnore(contextDir), func(rel, path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			entry, err := fileEntryDigest(rel, path, info.Mode())
			if err != nil {
				return err
			}
			b.WriteString(entry.String())
			b.WriteString("\x00")
			return nil
		}

		if d.IsDir() {
			fmt.Fprintf(&b, "dir\x00%s\x00%o\x00", rel, info.Mode().Perm())
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopy, err)
	}

	return digest.FromString(b.String()), nil
}

// Hashes one regular file as a cache key component.
func fileEntryDigest(rel, path string, mode os.FileMode) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopy, err)
	}
	defer f.Close()

	content, err := digest.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCopy, err)
	}

	return digest.FromString(fmt.Sprintf("file\x00%s\x00%o\x00%s", rel, mode.Perm(), content)), nil
}

// Returns the environment map as sorted "key=value" entries for stable
// hashing.
func sortedEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for k, v := range env {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}
