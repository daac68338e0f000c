package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wharfhq/wharfd/internal/manifest"
)

func TestResolveDescriptorPath(t *testing.T) {
	dir := t.TempDir()
	descriptor := filepath.Join(dir, manifest.DefaultFilename)
	if err := os.WriteFile(descriptor, []byte("image: app"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveDescriptorPath(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != descriptor {
		t.Fatalf("path = %q, want %q", got, descriptor)
	}

	got, err = resolveDescriptorPath(descriptor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != descriptor {
		t.Fatalf("path = %q, want %q", got, descriptor)
	}
}

func TestResolveDescriptorPathMissing(t *testing.T) {
	if _, err := resolveDescriptorPath(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected an error for a missing descriptor")
	}
}

func TestResolveContexts(t *testing.T) {
	root := "/srv/app/backend"
	m := &manifest.Manifest{
		Contexts: map[string]string{
			"data":   "../data",
			"assets": "/srv/shared/assets",
		},
	}

	got, err := resolveContexts(m, root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"data":   "/srv/app/data",
		"assets": "/srv/shared/assets",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveContextsOverride(t *testing.T) {
	m := &manifest.Manifest{
		Contexts: map[string]string{"data": "../data"},
	}

	got, err := resolveContexts(m, "/srv/app/backend", map[string]string{"data": "/mnt/seed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["data"] != "/mnt/seed" {
		t.Fatalf("data = %q, want %q", got["data"], "/mnt/seed")
	}
}

func TestResolveContextsUndeclaredOverride(t *testing.T) {
	m := &manifest.Manifest{}

	_, err := resolveContexts(m, "/srv/app", map[string]string{"data": "/mnt/seed"})
	if !errors.Is(err, manifest.ErrManifest) {
		t.Fatalf("err = %v, want %v", err, manifest.ErrManifest)
	}
}

func TestResolveContextsNone(t *testing.T) {
	got, err := resolveContexts(&manifest.Manifest{}, "/srv/app", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("contexts = %v, want nil", got)
	}
}
