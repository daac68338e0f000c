package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/wharfhq/wharfd/internal/paths"
	"github.com/wharfhq/wharfd/internal/protocol"
)

// Returned when a command cannot be delivered to the daemon or the daemon
// reports a failure.
var ErrClient = errors.New("client operation failed")

// Returned when no daemon is listening on the socket.
var ErrNotRunning = errors.New("daemon is not running")

// How long a dial waits before concluding that no daemon is listening.
const dialTimeout = 2 * time.Second

// Talks to the wharfd daemon over its Unix socket.
//
// Every command opens a fresh connection, performs a single newline-delimited
// JSON exchange, and closes. Long-running commands such as build hold the
// connection open for their duration; closing it cancels the command on the
// daemon side.
type Client struct {
	socketPath string
}

// Creates a client for the daemon socket. An empty path uses the default
// socket location.
func New(socketPath string) *Client {
	if socketPath == "" {
		socketPath = paths.Socket()
	}
	return &Client{socketPath: socketPath}
}

// Sends one command and returns the daemon's raw response payload.
//
// A CmdError response is converted into an error carrying the daemon's
// message.
func (c *Client) roundTrip(cmd protocol.Command, payload any) ([]byte, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: socket %s: %v", ErrNotRunning, c.socketPath, err)
	}
	defer conn.Close()

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrClient, err)
	}

	env, raw, err := protocol.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}

	if env.Command == protocol.CmdError {
		result, err := protocol.DecodePayload[protocol.ErrorResult](raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed error response: %v", ErrClient, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrClient, result.Message)
	}

	return raw, nil
}

// Sends a command and decodes the success payload into T.
func exchange[T any](c *Client, cmd protocol.Command, payload any) (*T, error) {
	raw, err := c.roundTrip(cmd, payload)
	if err != nil {
		return nil, err
	}

	result, err := protocol.DecodePayload[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}
	return result, nil
}

// Executes a build descriptor on the daemon.
func (c *Client) Build(req *protocol.BuildRequest) (*protocol.BuildResult, error) {
	return exchange[protocol.BuildResult](c, protocol.CmdBuild, req)
}

// Starts a serve container from a previously built image.
func (c *Client) Run(req *protocol.RunRequest) (*protocol.RunResult, error) {
	return exchange[protocol.RunResult](c, protocol.CmdRun, req)
}

// Reports the state of a container.
func (c *Client) ContainerStatus(container string) (*protocol.ContainerStatusResult, error) {
	req := &protocol.ContainerRequest{Container: container}
	return exchange[protocol.ContainerStatusResult](c, protocol.CmdContainerStatus, req)
}

// Stops a running container.
func (c *Client) ContainerStop(container string) error {
	_, err := c.roundTrip(protocol.CmdContainerStop, &protocol.ContainerRequest{Container: container})
	return err
}

// Destroys a container and its task.
func (c *Client) ContainerDestroy(container string) error {
	_, err := c.roundTrip(protocol.CmdContainerDestroy, &protocol.ContainerRequest{Container: container})
	return err
}

// Runs a command inside a container and returns its output.
func (c *Client) Exec(container string, args []string) (*protocol.ExecResult, error) {
	req := &protocol.ExecRequest{Container: container, Args: args}
	return exchange[protocol.ExecResult](c, protocol.CmdContainerExec, req)
}

// Copies a path out of a container as a tar stream.
func (c *Client) Copy(container, path string) (*protocol.CopyResult, error) {
	req := &protocol.CopyRequest{Container: container, Path: path}
	return exchange[protocol.CopyResult](c, protocol.CmdContainerCopy, req)
}

// Destroys a built image, its containers, and its exported archive.
func (c *Client) ImageDestroy(image string) error {
	_, err := c.roundTrip(protocol.CmdImageDestroy, &protocol.ImageRequest{Image: image})
	return err
}

// Removes all layer checkpoints from the daemon's cache.
func (c *Client) Prune() error {
	_, err := c.roundTrip(protocol.CmdPrune, nil)
	return err
}

// Queries daemon status.
func (c *Client) Status() (*protocol.StatusResult, error) {
	return exchange[protocol.StatusResult](c, protocol.CmdStatus, nil)
}

// Asks the daemon to shut down.
func (c *Client) Shutdown() error {
	_, err := c.roundTrip(protocol.CmdShutdown, nil)
	return err
}
