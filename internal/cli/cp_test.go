package cli

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Builds an in-memory tar stream from name to content. Names ending in "/"
// become directories.
func buildArchive(t *testing.T, entries map[string]string) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for name, content := range entries {
		if name[len(name)-1] == '/' {
			if err := tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
				t.Fatal(err)
			}
			continue
		}
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestExtractArchive(t *testing.T) {
	dest := t.TempDir()
	archive := buildArchive(t, map[string]string{
		"settings/":         "",
		"settings/local.py": "ALLOWED_HOSTS = [\"*\"]\n",
		"requirements.txt":  "django==4.2\n",
	})

	if err := extractArchive(archive, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "settings", "local.py"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ALLOWED_HOSTS = [\"*\"]\n" {
		t.Fatalf("content = %q", data)
	}

	if _, err := os.Stat(filepath.Join(dest, "requirements.txt")); err != nil {
		t.Fatal(err)
	}
}

func TestExtractArchiveConfinesEntries(t *testing.T) {
	parent := t.TempDir()
	dest := filepath.Join(parent, "out")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}

	archive := buildArchive(t, map[string]string{
		"../escape.txt": "outside",
	})

	if err := extractArchive(archive, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(parent, "escape.txt")); err == nil {
		t.Fatal("archive entry escaped the destination directory")
	}
	if _, err := os.Stat(filepath.Join(dest, "escape.txt")); err != nil {
		t.Fatal("escaping entry was not confined to the destination")
	}
}
