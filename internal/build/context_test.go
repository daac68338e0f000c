package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewContextSetMissingNamed(t *testing.T) {
	root := t.TempDir()
	_, err := newContextSet(root, map[string]string{"data": filepath.Join(root, "no-such-dir")})
	if !errors.Is(err, ErrContext) {
		t.Fatalf("err = %v, want %v", err, ErrContext)
	}
}

func TestNewContextSetMissingRoot(t *testing.T) {
	_, err := newContextSet(filepath.Join(t.TempDir(), "gone"), nil)
	if !errors.Is(err, ErrContext) {
		t.Fatalf("err = %v, want %v", err, ErrContext)
	}
}

func TestNewContextSetNamedIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "data")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := newContextSet(root, map[string]string{"data": file})
	if !errors.Is(err, ErrContext) {
		t.Fatalf("err = %v, want %v", err, ErrContext)
	}
}

func TestResolveSource(t *testing.T) {
	root := t.TempDir()
	data := t.TempDir()
	cs, err := newContextSet(root, map[string]string{"data": data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir, path, err := cs.resolveSource("src/main.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != root {
		t.Fatalf("dir = %q, want %q", dir, root)
	}
	if want := filepath.Join(root, "src/main.py"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	dir, path, err = cs.resolveSource("data:seed.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != data {
		t.Fatalf("dir = %q, want %q", dir, data)
	}
	if want := filepath.Join(data, "seed.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestResolveSourceUndeclaredContext(t *testing.T) {
	cs, err := newContextSet(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := cs.resolveSource("data:seed.json"); !errors.Is(err, ErrContext) {
		t.Fatalf("err = %v, want %v", err, ErrContext)
	}
}

func TestWalkContextHonorsIgnore(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"app.py":             "pass",
		"debug.log":          "noise",
		".wharfignore":       "*.log\n__pycache__\n",
		"pkg/module.py":      "pass",
		"__pycache__/app.pc": "bytecode",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	err := walkContext(root, loadIgnore(root), func(rel, _ string, d fs.DirEntry) error {
		if !d.IsDir() {
			seen = append(seen, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(seen)

	want := []string{".wharfignore", "app.py", "pkg/module.py"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("walked files mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkContextNoIgnoreFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	if ign := loadIgnore(root); ign != nil {
		t.Fatal("loadIgnore returned a matcher for a context without an ignore file")
	}

	count := 0
	err := walkContext(root, nil, func(_, _ string, d fs.DirEntry) error {
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("walked %d files, want 1", count)
	}
}
