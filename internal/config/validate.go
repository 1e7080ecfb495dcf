package config

import (
	"fmt"
	"net"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.RuntimeDir == "" {
		return fmt.Errorf("paths.runtime_dir must be set")
	}
	// sun_path is 108 bytes on Linux including the terminator.
	if len(c.Paths.SocketPath) > 107 {
		return fmt.Errorf("paths.socket_path is too long for a unix socket (%d bytes)", len(c.Paths.SocketPath))
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.HTTPBind == "" {
		return nil
	}
	host, port, err := net.SplitHostPort(c.Server.HTTPBind)
	if err != nil {
		return fmt.Errorf("server.http_bind %q: %w", c.Server.HTTPBind, err)
	}
	if host != "" && net.ParseIP(host) == nil && host != "localhost" {
		return fmt.Errorf("server.http_bind host %q must be an IP address or localhost", host)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("server.http_bind port %q is invalid", port)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 || c.History.RetentionDays > maxHistoryRetentionDays {
		return fmt.Errorf("history.retention_days must be between 0 and %d", maxHistoryRetentionDays)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 || c.Logging.RetentionDays > maxLogRetentionDays {
		return fmt.Errorf("logging.retention_days must be between 0 and %d", maxLogRetentionDays)
	}
	return nil
}
