package server

import "testing"

// The shutdown command stops the server from a handler goroutine while the
// signal handler stops it again on exit; the second call must be a no-op.
func TestStopIdempotent(t *testing.T) {
	s := &Server{done: make(chan struct{})}

	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error on repeated Stop: %v", err)
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel not closed after Stop")
	}
}

func TestConfigLoadEnv(t *testing.T) {
	t.Setenv("WHARFD_SOCKET", "/tmp/wharfd-test.sock")
	t.Setenv("WHARFD_CONTAINERD_NAMESPACE", "wharfd-test")

	cfg := Config{}
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SocketPath != "/tmp/wharfd-test.sock" {
		t.Fatalf("SocketPath = %q, want %q", cfg.SocketPath, "/tmp/wharfd-test.sock")
	}
	if cfg.ContainerdNamespace != "wharfd-test" {
		t.Fatalf("ContainerdNamespace = %q, want %q", cfg.ContainerdNamespace, "wharfd-test")
	}
	if cfg.ContainerdAddress != "" {
		t.Fatalf("ContainerdAddress = %q, want empty", cfg.ContainerdAddress)
	}
}

func TestConfigLoadEnvKeepsExplicitValues(t *testing.T) {
	t.Setenv("WHARFD_SOCKET", "/tmp/from-env.sock")

	cfg := Config{SocketPath: "/tmp/explicit.sock"}
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SocketPath != "/tmp/explicit.sock" {
		t.Fatalf("SocketPath = %q, want %q", cfg.SocketPath, "/tmp/explicit.sock")
	}
}
