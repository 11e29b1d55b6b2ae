package daemonrun

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stagehand/internal/ipc"
	"stagehand/internal/testsupport"
)

func TestSocketPathUsesLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	want := filepath.Join(cfg.Paths.LogDir, "stagehandd.sock")
	if got := SocketPath(cfg); got != want {
		t.Fatalf("SocketPath = %q, want %q", got, want)
	}
	if got := SocketPath(nil); got == "" {
		t.Fatal("SocketPath(nil) should fall back to a temp location")
	}
}

func TestRunServesIPCUntilCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	socket := filepath.Join(t.TempDir(), "stagehandd.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, Options{SocketPath: socket})
	}()

	var client *ipc.Client
	var err error
	deadline := time.Now().Add(5 * time.Second)
	for {
		client, err = ipc.Dial(socket)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial daemon socket: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("daemon should report running")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}
