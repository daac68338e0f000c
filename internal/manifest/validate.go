package manifest

import (
	"fmt"
	"path"
	"strings"
)

// Checks the descriptor for structural errors.
//
// Validation is performed once at load time so that every failure a
// descriptor can cause on its own is reported before any container is
// started.
func (m *Manifest) Validate() error {
	if m.Image == "" {
		return fmt.Errorf("%w: image is required", ErrManifest)
	}
	if m.From == "" {
		return fmt.Errorf("%w: from is required", ErrManifest)
	}
	if !pinned(m.From) {
		return fmt.Errorf("%w: from %q must pin an exact tag or digest", ErrManifest, m.From)
	}
	if len(m.Command) == 0 {
		return fmt.Errorf("%w: command is required", ErrManifest)
	}
	if m.Port < 0 || m.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrManifest, m.Port)
	}
	if m.Workdir != "" && !path.IsAbs(m.Workdir) {
		return fmt.Errorf("%w: workdir %q must be absolute", ErrManifest, m.Workdir)
	}

	for name, dir := range m.Contexts {
		if name == "" || strings.ContainsAny(name, ":/ \t") {
			return fmt.Errorf("%w: invalid context name %q", ErrManifest, name)
		}
		if dir == "" {
			return fmt.Errorf("%w: context %q has no path", ErrManifest, name)
		}
	}

	for i, step := range m.Steps {
		if err := m.validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

// Checks a single step.
func (m *Manifest) validateStep(step Step) error {
	if step.Run != "" && step.Copy != "" {
		return fmt.Errorf("%w: run and copy are mutually exclusive", ErrManifest)
	}
	if step.Run == "" && step.Copy == "" &&
		step.Shell == "" && step.Workdir == "" && len(step.Env) == 0 {
		return fmt.Errorf("%w: empty step", ErrManifest)
	}
	if step.Copy != "" {
		return m.validateCopy(step.Copy)
	}
	return nil
}

// Checks a copy operand.
//
// The source must stay inside its context: sources resolving above the
// context root are rejected here rather than at execution time, because a
// path escaping the context is a descriptor defect, not a build-environment
// condition. A "name:path" source must reference a declared named context.
func (m *Manifest) validateCopy(copyStr string) error {
	parts := strings.Fields(copyStr)
	if len(parts) != 2 {
		return fmt.Errorf("%w: copy %q must be \"src dest\"", ErrManifest, copyStr)
	}

	src := parts[0]
	if name, rest, ok := SplitContextSource(src); ok {
		if _, declared := m.Contexts[name]; !declared {
			return fmt.Errorf("%w: copy references undeclared context %q", ErrManifest, name)
		}
		src = rest
	}

	if path.IsAbs(src) {
		return fmt.Errorf("%w: copy source %q must be context-relative", ErrManifest, src)
	}
	if escapes(src) {
		return fmt.Errorf("%w: copy source %q escapes the build context", ErrManifest, src)
	}

	return nil
}

// Splits a copy source of the form "name:path" into the context name and
// the path within that context.
//
// Returns false when the source is a plain build-context path. A colon
// after a path separator does not start a context reference.
func SplitContextSource(src string) (name, rest string, ok bool) {
	i := strings.IndexByte(src, ':')
	if i < 1 {
		return "", "", false
	}
	if strings.ContainsRune(src[:i], '/') {
		return "", "", false
	}
	return src[:i], src[i+1:], true
}

// Reports whether a relative path resolves above its root.
func escapes(p string) bool {
	clean := path.Clean(p)
	return clean == ".." || strings.HasPrefix(clean, "../")
}

// Reports whether an image reference pins an exact version.
//
// A reference is pinned when it carries a digest, or a tag other than
// "latest". A bare name would float with the registry's default tag and is
// rejected so that rebuilds cannot silently pick up a newer base runtime.
func pinned(ref string) bool {
	if strings.Contains(ref, "@") {
		return true
	}

	// Only a colon after the last slash is a tag separator; earlier colons
	// belong to a registry host:port.
	slash := strings.LastIndexByte(ref, '/')
	colon := strings.LastIndexByte(ref, ':')
	if colon <= slash {
		return false
	}

	tag := ref[colon+1:]
	return tag != "" && tag != "latest"
}
