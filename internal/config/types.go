package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/filesearchd/internal/logging"
	"github.com/fyrsmithlabs/filesearchd/internal/mask"
)

// Config is the root configuration for filesearchd. It is loaded once
// at startup and treated as immutable for the process lifetime.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Sandbox SandboxConfig  `koanf:"sandbox"`
	Masker  MaskerConfig   `koanf:"masker"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig configures the serving surface.
type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport string `koanf:"transport"`

	// Host and Port apply to the http transport only.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SandboxConfig confines filesystem access.
type SandboxConfig struct {
	// AllowedPaths are the directory roots the server may access.
	// Required; entries that do not exist are dropped at startup.
	AllowedPaths []string `koanf:"allowed_paths"`

	// ExcludePaths deny access to their whole subtrees, taking
	// precedence over AllowedPaths.
	ExcludePaths []string `koanf:"exclude_paths"`

	// ShowHidden lifts the default suppression of hidden files. The
	// zero value hides them, matching the safe default.
	ShowHidden bool `koanf:"show_hidden"`

	// DefaultTimeLimit bounds traversals and searches whose request
	// leaves the limit unset.
	DefaultTimeLimit time.Duration `koanf:"default_time_limit"`
}

// MaskerConfig configures path masking at the trust boundary.
type MaskerConfig struct {
	Enabled bool `koanf:"enabled"`

	// Mode is "prefix" or "segment".
	Mode string `koanf:"mode"`

	// Token is the token stem; entry i masks as [<Token>i].
	Token string `koanf:"token"`

	// Paths are the sensitive paths to register, in token-index order.
	Paths []string `koanf:"paths"`
}

// Transport values for ServerConfig.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Validate checks the configuration for consistency. It does not touch
// the filesystem; existence checks on allowed paths happen when the
// resolver is built.
func (c *Config) Validate() error {
	if len(c.Sandbox.AllowedPaths) == 0 {
		return fmt.Errorf("sandbox.allowed_paths must not be empty")
	}

	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid server.transport %q (want %q or %q)",
			c.Server.Transport, TransportStdio, TransportHTTP)
	}
	if c.Server.Transport == TransportHTTP {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d", c.Server.Port)
		}
	}

	if _, err := mask.ParseMode(c.Masker.Mode); err != nil {
		return fmt.Errorf("invalid masker.mode: %w", err)
	}

	return c.Logging.Validate()
}
