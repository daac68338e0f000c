package client

import (
	"bufio"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/wharfhq/wharfd/internal/protocol"
)

// Serves a single connection on a throwaway socket, replying to every
// request with the given envelope.
func fakeDaemon(t *testing.T, cmd protocol.Command, payload any) string {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "wharfd.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			if _, err := bufio.NewReader(conn).ReadBytes(byte(10)); err != nil {
				conn.Close()
				continue
			}

			data, err := protocol.Encode(cmd, payload)
			if err == nil {
				conn.Write(append(data, byte(10)))
			}
			conn.Close()
		}
	}()

	return socketPath
}

func TestStatus(t *testing.T) {
	socketPath := fakeDaemon(t, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Pid:     42,
		Builds:  3,
	})

	result, err := New(socketPath).Status()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Running {
		t.Fatal("Running = false, want true")
	}
	if result.Pid != 42 {
		t.Fatalf("Pid = %d, want 42", result.Pid)
	}
	if result.Builds != 3 {
		t.Fatalf("Builds = %d, want 3", result.Builds)
	}
}

func TestErrorResponse(t *testing.T) {
	socketPath := fakeDaemon(t, protocol.CmdError, &protocol.ErrorResult{
		Message: "image \"app\" has not been built",
	})

	_, err := New(socketPath).ContainerStatus("app")
	if !errors.Is(err, ErrClient) {
		t.Fatalf("err = %v, want %v", err, ErrClient)
	}
}

func TestCopy(t *testing.T) {
	socketPath := fakeDaemon(t, protocol.CmdOK, &protocol.CopyResult{
		Archive: []byte("tar-stream"),
	})

	result, err := New(socketPath).Copy("foodgram", "/app/settings.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Archive) != "tar-stream" {
		t.Fatalf("Archive = %q, want %q", result.Archive, "tar-stream")
	}
}

func TestImageDestroy(t *testing.T) {
	socketPath := fakeDaemon(t, protocol.CmdOK, nil)

	if err := New(socketPath).ImageDestroy("foodgram"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPrune(t *testing.T) {
	socketPath := fakeDaemon(t, protocol.CmdOK, nil)

	if err := New(socketPath).Prune(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDaemonNotRunning(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "absent.sock")

	_, err := New(socketPath).Status()
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v, want %v", err, ErrNotRunning)
	}
}
