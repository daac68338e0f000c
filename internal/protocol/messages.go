package protocol

import "github.com/wharfhq/wharfd/internal/manifest"

// The observable state of a container.
type ContainerState string

const (
	ContainerNotCreated ContainerState = "not-created"
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
)

// Payload for [CmdBuild].
//
// The client loads and validates the descriptor, resolves the build context
// and named context directories against its own working directory, and ships
// the result. The daemon never re-reads the descriptor file.
type BuildRequest struct {
	Manifest *manifest.Manifest `json:"manifest"`           // Validated build descriptor.
	Root     string             `json:"root"`               // Absolute build context directory.
	Contexts map[string]string  `json:"contexts,omitempty"` // Named context name to absolute directory.
	Output   string             `json:"output,omitempty"`   // Output directory; empty uses the daemon default.
	Platform string             `json:"platform,omitempty"` // Target platform; empty uses the host.
	NoCache  bool               `json:"noCache,omitempty"`  // Skip layer checkpoint reuse.
}

// Successful result of [CmdBuild].
type BuildResult struct {
	Image  string `json:"image"`  // Image name from the descriptor.
	Output string `json:"output"` // Directory containing the exported image.tar.
}

// Payload for [CmdRun].
type RunRequest struct {
	Image string `json:"image"`          // Name of a previously built image.
	Name  string `json:"name,omitempty"` // Container name; defaults to the image name.
}

// Successful result of [CmdRun].
type RunResult struct {
	Container string `json:"container"` // ID of the started container.
}

// Payload for container lifecycle commands.
type ContainerRequest struct {
	Container string `json:"container"` // Container ID.
}

// Successful result of [CmdContainerStatus].
//
// ExitCode is meaningful only when State is [ContainerStopped] and the
// container's task has exited rather than never having started.
type ContainerStatusResult struct {
	State    ContainerState `json:"state"`
	ExitCode int            `json:"exitCode,omitempty"`
}

// Payload for [CmdContainerExec].
type ExecRequest struct {
	Container string   `json:"container"` // Container ID.
	Args      []string `json:"args"`      // Command and arguments, run without shell wrapping.
}

// Payload for [CmdContainerCopy].
type CopyRequest struct {
	Container string `json:"container"` // Container ID.
	Path      string `json:"path"`      // Absolute path inside the container.
}

// Successful result of [CmdContainerCopy].
//
// Archive holds a tar stream of the requested path. JSON encodes it as
// base64; the command is meant for configuration files and small artifacts,
// not bulk export.
type CopyResult struct {
	Archive []byte `json:"archive"`
}

// Payload for [CmdImageDestroy].
type ImageRequest struct {
	Image string `json:"image"` // Name of a previously built image.
}

// Successful result of [CmdContainerExec].
type ExecResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Successful result of [CmdStatus].
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Payload of [CmdError] responses.
type ErrorResult struct {
	Message string `json:"message"`
}
