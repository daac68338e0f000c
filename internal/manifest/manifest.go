package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default filename for build descriptors.
const DefaultFilename = "wharf.yaml"

var (
	ErrManifest = errors.New("invalid manifest")
	ErrNotFound = errors.New("manifest not found")
)

// A declarative build descriptor for a single image.
//
// The descriptor pins a base image, lists the build steps in execution
// order, and declares the launch configuration (command, working directory,
// environment, exposed port) baked into the exported image config.
type Manifest struct {
	Image    string            `yaml:"image"`    // Name for the built image.
	From     string            `yaml:"from"`     // Base image reference, tag or digest pinned.
	Workdir  string            `yaml:"workdir"`  // Initial working directory for steps and the image config.
	Port     int               `yaml:"port"`     // TCP port the launched process binds, recorded as exposed.
	Env      map[string]string `yaml:"env"`      // Environment baked into the image config.
	Contexts map[string]string `yaml:"contexts"` // Named auxiliary contexts, resolved relative to the manifest.
	Steps    []Step            `yaml:"steps"`    // Build steps, executed in order.
	Command  []string          `yaml:"command"`  // Exec-form launch command for the image.
}

// A single build step.
//
// A step is either an operation (run or copy, mutually exclusive) or a
// standalone modifier. Modifier fields on an operation step apply to that
// operation only; standalone modifiers persist for all subsequent steps.
type Step struct {
	Run     string            `yaml:"run,omitempty"`     // Shell command executed in the build container.
	Copy    string            `yaml:"copy,omitempty"`    // "src dest" copy from the build context or a named context.
	Shell   string            `yaml:"shell,omitempty"`   // Shell used for run steps.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory for operations.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables for run steps.
}

// Loads and validates a build descriptor from a file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	return Parse(data)
}

// Parses and validates a build descriptor from YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
