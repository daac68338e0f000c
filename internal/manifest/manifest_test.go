package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validDescriptor = `
image: foodgram-backend
from: docker.io/library/python:3.10
workdir: /app
port: 7500
contexts:
  data: ../data
steps:
  - copy: requirements.txt requirements.txt
  - run: pip install --no-cache-dir -r requirements.txt
  - copy: . .
  - copy: "data:. /data"
command: ["gunicorn", "--bind", "0.0.0.0:7500", "foodgram.wsgi"]
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(validDescriptor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Manifest{
		Image:    "foodgram-backend",
		From:     "docker.io/library/python:3.10",
		Workdir:  "/app",
		Port:     7500,
		Contexts: map[string]string{"data": "../data"},
		Steps: []Step{
			{Copy: "requirements.txt requirements.txt"},
			{Run: "pip install --no-cache-dir -r requirements.txt"},
			{Copy: ". ."},
			{Copy: "data:. /data"},
		},
		Command: []string{"gunicorn", "--bind", "0.0.0.0:7500", "foodgram.wsgi"},
	}

	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("image: [")); !errors.Is(err, ErrManifest) {
		t.Fatalf("err = %v, want ErrManifest", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(validDescriptor), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Image != "foodgram-backend" {
		t.Fatalf("image = %q, want foodgram-backend", m.Image)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Manifest {
		return Manifest{
			Image:   "app",
			From:    "python:3.10",
			Command: []string{"serve"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr bool
	}{
		{
			name:   "minimal valid",
			mutate: func(m *Manifest) {},
		},
		{
			name:    "missing image",
			mutate:  func(m *Manifest) { m.Image = "" },
			wantErr: true,
		},
		{
			name:    "missing from",
			mutate:  func(m *Manifest) { m.From = "" },
			wantErr: true,
		},
		{
			name:    "unpinned from",
			mutate:  func(m *Manifest) { m.From = "python" },
			wantErr: true,
		},
		{
			name:    "latest tag",
			mutate:  func(m *Manifest) { m.From = "python:latest" },
			wantErr: true,
		},
		{
			name:   "digest pin",
			mutate: func(m *Manifest) { m.From = "python@sha256:abc123" },
		},
		{
			name:    "missing command",
			mutate:  func(m *Manifest) { m.Command = nil },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(m *Manifest) { m.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "relative workdir",
			mutate:  func(m *Manifest) { m.Workdir = "app" },
			wantErr: true,
		},
		{
			name:    "run and copy in one step",
			mutate:  func(m *Manifest) { m.Steps = []Step{{Run: "true", Copy: "a b"}} },
			wantErr: true,
		},
		{
			name:    "empty step",
			mutate:  func(m *Manifest) { m.Steps = []Step{{}} },
			wantErr: true,
		},
		{
			name:   "modifier-only step",
			mutate: func(m *Manifest) { m.Steps = []Step{{Workdir: "/app"}} },
		},
		{
			name:    "copy missing dest",
			mutate:  func(m *Manifest) { m.Steps = []Step{{Copy: "file.txt"}} },
			wantErr: true,
		},
		{
			name:    "copy escapes context",
			mutate:  func(m *Manifest) { m.Steps = []Step{{Copy: "../data /data"}} },
			wantErr: true,
		},
		{
			name:    "copy with absolute source",
			mutate:  func(m *Manifest) { m.Steps = []Step{{Copy: "/etc/passwd /tmp/p"}} },
			wantErr: true,
		},
		{
			name:    "copy from undeclared context",
			mutate:  func(m *Manifest) { m.Steps = []Step{{Copy: "data:. /data"}} },
			wantErr: true,
		},
		{
			name: "copy from declared context",
			mutate: func(m *Manifest) {
				m.Contexts = map[string]string{"data": "../data"}
				m.Steps = []Step{{Copy: "data:. /data"}}
			},
		},
		{
			name:    "context with empty path",
			mutate:  func(m *Manifest) { m.Contexts = map[string]string{"data": ""} },
			wantErr: true,
		},
		{
			name:    "context name with colon",
			mutate:  func(m *Manifest) { m.Contexts = map[string]string{"da:ta": "x"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitContextSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ctx   string
		rest  string
		ok    bool
	}{
		{
			name:  "valid context source",
			input: "data:fixtures/seed.json",
			ctx:   "data",
			rest:  "fixtures/seed.json",
			ok:    true,
		},
		{
			name:  "context root",
			input: "data:.",
			ctx:   "data",
			rest:  ".",
			ok:    true,
		},
		{
			name:  "plain path",
			input: "requirements.txt",
		},
		{
			name:  "colon at start",
			input: ":path",
		},
		{
			name:  "colon after slash",
			input: "some/dir:path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rest, ok := SplitContextSource(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if ctx != tt.ctx {
				t.Errorf("ctx = %q, want %q", ctx, tt.ctx)
			}
			if rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestPinned(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"python:3.10", true},
		{"python:latest", false},
		{"python", false},
		{"python:", false},
		{"registry.local:5000/python", false},
		{"registry.local:5000/python:3.10", true},
		{"python@sha256:abc", true},
	}

	for _, tt := range tests {
		if got := pinned(tt.ref); got != tt.want {
			t.Errorf("pinned(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
