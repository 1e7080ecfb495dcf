package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"suimu/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a fresh runtime directory. The
// directory lives directly under the system temp dir so the socket path
// stays within the unix socket length limit.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base, err := os.MkdirTemp("", "suimu-")
	if err != nil {
		t.Fatalf("create runtime dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(base) })

	cfg := config.Default()
	cfg.Paths.RuntimeDir = base
	cfg.Paths.SocketPath = filepath.Join(base, "suimu.sock")
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.Server.HTTPBind = ""
	cfg.Logging.RetentionDays = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHTTP enables the HTTP transport on an ephemeral loopback port.
func WithHTTP() ConfigOption {
	return func(c *config.Config) {
		c.Server.HTTPBind = "127.0.0.1:0"
	}
}

// WithoutHistory disables the invocation journal.
func WithoutHistory() ConfigOption {
	return func(c *config.Config) {
		c.History.Enabled = false
	}
}

// WriteConfigFile writes body as config.toml in cfg's runtime directory and
// returns its path.
func WriteConfigFile(t testing.TB, cfg *config.Config, body string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.RuntimeDir, "config.toml")
	WriteFile(t, path, []byte(body))
	return path
}
