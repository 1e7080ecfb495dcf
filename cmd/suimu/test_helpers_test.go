package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"suimu/internal/config"
	"suimu/internal/daemon"
	"suimu/internal/logging"
	"suimu/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	socketPath string
	configPath string
}

// setupCLIConfig writes a config file rooted in a fresh runtime directory.
func setupCLIConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUIMU_LOG_LEVEL", "")
	t.Setenv("SUIMU_LOG_FORMAT", "")
	t.Setenv("SUIMU_HTTP_BIND", "")
	t.Chdir(t.TempDir())

	cfg := testsupport.NewConfig(t)
	configPath := testsupport.WriteConfigFile(t, cfg, fmt.Sprintf(
		"[paths]\nruntime_dir = %q\nsocket_path = %q\n\n[history]\npath = %q\nretention_days = 0\n\n[logging]\nlevel = \"warn\"\n",
		cfg.Paths.RuntimeDir,
		cfg.Paths.SocketPath,
		cfg.History.Path,
	))
	cfg.Logging.Level = "warn"
	return cfg, configPath
}

// setupCLITestEnv additionally starts a daemon serving the config's socket.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg, configPath := setupCLIConfig(t)
	d, err := daemon.New(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		d.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI daemon test: %v", err)
		}
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Close()
	})
	time.Sleep(50 * time.Millisecond)

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if socket != "" {
		flags = append(flags, "--socket", socket)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeClipCSV(t *testing.T, lines ...string) string {
	t.Helper()
	return testsupport.WriteCSV(t, append([]string{testsupport.SampleHeader}, lines...)...)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
