package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrProtocol = errors.New("protocol error")

// A command name carried in an envelope.
type Command string

const (
	CmdBuild            Command = "build"             // Execute a build descriptor.
	CmdRun              Command = "run"               // Launch a built image as a serve container.
	CmdContainerStatus  Command = "container-status"  // Query a container's state.
	CmdContainerStop    Command = "container-stop"    // Stop a container's task.
	CmdContainerDestroy Command = "container-destroy" // Remove a container and its resources.
	CmdContainerExec    Command = "container-exec"    // Run a command inside a container.
	CmdContainerCopy    Command = "container-copy"    // Copy a path out of a container.
	CmdImageDestroy     Command = "image-destroy"     // Remove a built image and its containers.
	CmdPrune            Command = "prune"             // Remove all layer checkpoints.
	CmdStatus           Command = "status"            // Query daemon status.
	CmdShutdown         Command = "shutdown"          // Stop the daemon.
	CmdOK               Command = "ok"                // Successful response.
	CmdError            Command = "error"             // Failed response.
)

// The framing for every message exchanged with the daemon.
//
// Each message is a single JSON object on one line: the command name and an
// opaque payload decoded by the selected handler.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		raw = data
	}

	data, err := json.Marshal(Envelope{Command: cmd, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return data, nil
}

// Parses an envelope from a single message line.
//
// Returns the envelope and its raw payload for handler-specific decoding.
func Decode(line []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrProtocol)
	}
	return env, env.Payload, nil
}

// Decodes a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(raw) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return &v, nil
}
