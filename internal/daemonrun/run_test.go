package daemonrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"suimu/internal/daemon"
	"suimu/internal/daemonrun"
	"suimu/internal/testsupport"
)

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var socket string
	err := daemonrun.Run(ctx, cfg, daemonrun.Options{
		LogLevel: "ERROR",
		Ready: func(d *daemon.Daemon) {
			socket = d.Status(ctx).Socket
			if _, err := os.Stat(filepath.Join(cfg.Paths.RuntimeDir, "suimu.pid")); err != nil {
				t.Errorf("expected pid file: %v", err)
			}
			cancel()
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon run test: %v", err)
		}
		t.Fatalf("Run: %v", err)
	}
	if socket != cfg.Paths.SocketPath {
		t.Fatalf("socket = %q, want %q", socket, cfg.Paths.SocketPath)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("log level override not applied: %q", cfg.Logging.Level)
	}
	if _, err := os.Lstat(filepath.Join(cfg.LogDir(), "suimu.log")); err != nil {
		t.Fatalf("expected current log pointer: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.RuntimeDir, "suimu.pid")); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
	if _, err := os.Stat(cfg.Paths.SocketPath); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, got %v", err)
	}
}

func TestRunFailsPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.SocketPath, []byte("not a socket"))

	err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: "error"})
	if !errors.Is(err, daemonrun.ErrPreflight) {
		t.Fatalf("expected ErrPreflight, got %v", err)
	}
}
