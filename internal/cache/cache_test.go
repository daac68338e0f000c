package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
)

func testKey(s string) digest.Digest {
	return digest.FromString(s)
}

func TestHasMissing(t *testing.T) {
	s := New(t.TempDir())
	if s.Has(testKey("absent")) {
		t.Fatal("Has returned true for a missing checkpoint")
	}
}

func TestStageCommitHas(t *testing.T) {
	s := New(t.TempDir())
	key := testKey("step-1")

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stage, archiveFilename), []byte("tar"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Commit(key, stage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Has(key) {
		t.Fatal("committed checkpoint not found")
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "tar" {
		t.Fatalf("archive content = %q, want tar", data)
	}

	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Fatal("staging directory still present after commit")
	}
}

func TestCommitWithoutArchive(t *testing.T) {
	s := New(t.TempDir())

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Commit(testKey("empty"), stage); err == nil {
		t.Fatal("expected error committing an empty stage")
	}
	if s.Has(testKey("empty")) {
		t.Fatal("empty stage was committed")
	}
}

func TestCommitExistingKeyWins(t *testing.T) {
	s := New(t.TempDir())
	key := testKey("dup")

	for _, content := range []string{"first", "second"} {
		stage, err := s.Stage()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(stage, archiveFilename), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if err := s.Commit(key, stage); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "first" {
		t.Fatalf("archive content = %q, want first (existing checkpoint kept)", data)
	}
}

func TestDiscard(t *testing.T) {
	s := New(t.TempDir())

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Discard(stage)
	if _, err := os.Stat(stage); !os.IsNotExist(err) {
		t.Fatal("staging directory still present after discard")
	}
}

func TestPrune(t *testing.T) {
	s := New(t.TempDir())
	key := testKey("pruned")

	stage, err := s.Stage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stage, archiveFilename), []byte("tar"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(key, stage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Prune(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Has(key) {
		t.Fatal("checkpoint survived prune")
	}
}
