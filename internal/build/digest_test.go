package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/wharfhq/wharfd/internal/manifest"
)

// Writes a descriptor-shaped build context: a dependency manifest and two
// source files.
func writeTestContext(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"requirements.txt": "django==4.2\ngunicorn==21.2\n",
		"app.py":           "def handler(): pass\n",
		"settings.py":      "DEBUG = False\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Image:   "app",
		From:    "python:3.10",
		Workdir: "/app",
		Steps: []manifest.Step{
			{Copy: "requirements.txt requirements.txt"},
			{Run: "pip install --no-cache-dir -r requirements.txt"},
			{Copy: ". ."},
		},
		Command: []string{"gunicorn", "--bind", "0.0.0.0:7500", "app:handler"},
	}
}

func chainFor(t *testing.T, m *manifest.Manifest, root string) []digest.Digest {
	t.Helper()
	cs, err := newContextSet(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys, err := stepChain(m, cs, "linux/amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return keys
}

func TestStepChainDeterministic(t *testing.T) {
	root := writeTestContext(t)
	m := testManifest()

	a := chainFor(t, m, root)
	b := chainFor(t, m, root)

	if len(a) != len(m.Steps) {
		t.Fatalf("len(chain) = %d, want %d", len(a), len(m.Steps))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("key %d differs between identical runs", i+1)
		}
	}
}

func TestStepChainSourceEditKeepsInstallKeys(t *testing.T) {
	root := writeTestContext(t)
	m := testManifest()

	before := chainFor(t, m, root)

	// Edit a source file that only the final copy step stages.
	if err := os.WriteFile(filepath.Join(root, "app.py"), []byte("def handler(): return 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	after := chainFor(t, m, root)

	if before[0] != after[0] {
		t.Fatal("manifest copy key changed after a source edit")
	}
	if before[1] != after[1] {
		t.Fatal("install key changed after a source edit")
	}
	if before[2] == after[2] {
		t.Fatal("source copy key unchanged after a source edit")
	}
}

func TestStepChainManifestEditInvalidatesInstall(t *testing.T) {
	root := writeTestContext(t)
	m := testManifest()

	before := chainFor(t, m, root)

	if err := os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("django==5.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	after := chainFor(t, m, root)

	for i := range before {
		if before[i] == after[i] {
			t.Fatalf("key %d unchanged after dependency manifest edit", i+1)
		}
	}
}

func TestStepChainDependsOnBaseAndPlatform(t *testing.T) {
	root := writeTestContext(t)
	m := testManifest()
	cs, err := newContextSet(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	amd, err := stepChain(m, cs, "linux/amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arm, err := stepChain(m, cs, "linux/arm64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amd[0] == arm[0] {
		t.Fatal("platform change did not change the chain")
	}

	other := testManifest()
	other.From = "python:3.11"
	bumped := chainFor(t, other, root)
	if amd[0] == bumped[0] {
		t.Fatal("base image change did not change the chain")
	}
}

func TestStepChainIgnoredFilesExcluded(t *testing.T) {
	root := writeTestContext(t)
	m := testManifest()

	if err := os.WriteFile(filepath.Join(root, ignoreFilename), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}

	before := chainFor(t, m, root)

	if err := os.WriteFile(filepath.Join(root, "debug.log"), []byte("noise"), 0644); err != nil {
		t.Fatal(err)
	}

	after := chainFor(t, m, root)

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("key %d changed after adding an ignored file", i+1)
		}
	}
}

func TestStepChainNamedContext(t *testing.T) {
	root := writeTestContext(t)
	data := t.TempDir()
	if err := os.WriteFile(filepath.Join(data, "seed.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	m := testManifest()
	m.Contexts = map[string]string{"data": "../data"}
	m.Steps = append(m.Steps, manifest.Step{Copy: "data:. /data"})

	cs, err := newContextSet(root, map[string]string{"data": data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, err := stepChain(m, cs, "linux/amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(data, "seed.json"), []byte("[1]"), 0644); err != nil {
		t.Fatal(err)
	}

	after, err := stepChain(m, cs, "linux/amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := len(before) - 1
	if before[last] == after[last] {
		t.Fatal("named context edit did not change its copy key")
	}
	if before[0] != after[0] {
		t.Fatal("named context edit changed an unrelated key")
	}
}
