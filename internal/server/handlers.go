package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/wharfhq/wharfd/internal"
	"github.com/wharfhq/wharfd/internal/build"
	"github.com/wharfhq/wharfd/internal/protocol"
)

// Filename of the exported image archive inside an image's output directory.
const imageArchive = "image.tar"

// Handles a build command.
//
// Receives a validated descriptor from the client and executes it against the
// container runtime. The checkpoint store is shared across builds so repeated
// builds of the same descriptor resume from cached layers.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}
	if req.Manifest == nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: "build request carries no descriptor"})
		return
	}

	output := req.Output
	if output == "" {
		output = filepath.Join(s.imageDir, req.Manifest.Image)
	}

	result, err := build.Run(ctx, s.runtime, build.Options{
		Manifest: req.Manifest,
		Root:     req.Root,
		Contexts: req.Contexts,
		Output:   output,
		Platform: req.Platform,
		Cache:    s.store,
		NoCache:  req.NoCache,
	})
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, &protocol.BuildResult{Image: result.Image, Output: result.Output})
}

// Handles a run command.
//
// Imports the named image's exported archive into containerd and starts a
// serve container from it. The container runs the command baked into the
// image at build time.
func (s *Server) handleRun(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.RunRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	archive := filepath.Join(s.imageDir, req.Image, imageArchive)
	if _, err := os.Stat(archive); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
			Message: fmt.Sprintf("image %q has not been built: %v", req.Image, err),
		})
		return
	}

	tag := req.Image + ":latest"
	if err := s.runtime.ImportImage(ctx, archive, tag); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	name := req.Name
	if name == "" {
		name = req.Image
	}

	ctr, err := s.runtime.StartServe(ctx, tag, name)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.RunResult{Container: ctr.ID()})
}

// Handles a container status command.
func (s *Server) handleContainerStatus(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	state, exitCode, err := s.runtime.Container(req.Container).Status(ctx)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ContainerStatusResult{State: state, ExitCode: exitCode})
}

// Handles a container stop command.
//
// Stopping an already stopped container succeeds; the exit code stays
// available through the status command until the container is destroyed.
func (s *Server) handleContainerStop(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if err := s.runtime.Container(req.Container).Stop(ctx); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a container destroy command.
func (s *Server) handleContainerDestroy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.runtime.Container(req.Container).Destroy(ctx)
	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a container exec command.
func (s *Server) handleContainerExec(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ExecRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}
	if len(req.Args) == 0 {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: "exec request carries no command"})
		return
	}

	result, err := s.runtime.Container(req.Container).ExecArgs(ctx, req.Args)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ExecResult{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	})
}

// Handles a container copy command.
//
// Archives the requested path inside the container and ships the tar stream
// back in the response payload.
func (s *Server) handleContainerCopy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.CopyRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}
	if req.Path == "" {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: "copy request carries no path"})
		return
	}

	var buf bytes.Buffer
	if err := s.runtime.Container(req.Container).CopyFrom(ctx, &buf, req.Path); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.CopyResult{Archive: buf.Bytes()})
}

// Handles an image destroy command.
//
// Removes the image's containers and containerd records, then the exported
// archive, so a later run command fails until the image is rebuilt.
func (s *Server) handleImageDestroy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ImageRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if err := s.runtime.DestroyImage(ctx, req.Image+":latest"); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if err := os.RemoveAll(filepath.Join(s.imageDir, req.Image)); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a prune command.
func (s *Server) handlePrune(conn net.Conn) {
	if err := s.store.Prune(); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
