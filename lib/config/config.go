// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "NEUROBRIDGE_CONFIG"

// DefaultSocketPath is where the server listens and the client dials
// unless told otherwise.
const DefaultSocketPath = "/dev/socket/neuro_bridge.sock"

// Config is the complete neuro-bridge server configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	GPU    GPUConfig    `yaml:"gpu" json:"gpu"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig configures the listening socket and per-connection
// deadlines.
type ServerConfig struct {
	// SocketPath is the Unix socket path. Any stale file at this path
	// is removed at startup.
	// Default: /dev/socket/neuro_bridge.sock
	SocketPath string `yaml:"socket_path" json:"socket_path"`

	// SocketMode is the octal permission mode applied to the socket
	// file after binding. Clients in a chroot or container usually run
	// as a different user, hence the permissive default.
	// Default: "0777"
	SocketMode string `yaml:"socket_mode" json:"socket_mode"`

	// SocketGroup, when set, is the group the socket file is chowned
	// to, so deployments can use mode 0660 and grant access through
	// group membership.
	SocketGroup string `yaml:"socket_group" json:"socket_group"`

	// IdleTimeout bounds how long a session waits for the next request.
	// Zero disables it.
	IdleTimeout Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// WriteTimeout bounds how long writing one response may take. Zero
	// disables it.
	// Default: 10s
	WriteTimeout Duration `yaml:"write_timeout" json:"write_timeout"`
}

// GPUConfig configures the GPU query handler and where it looks for
// hardware.
type GPUConfig struct {
	// QueryTimeout bounds one get_gpu_info query. Zero disables it.
	// Default: 10s
	QueryTimeout Duration `yaml:"query_timeout" json:"query_timeout"`

	// RateLimit is the sustained number of GPU queries per second
	// across all connections. Zero means unlimited.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`

	// Burst is the rate limiter's bucket size. Ignored when RateLimit
	// is zero; values below 1 are treated as 1.
	Burst int `yaml:"burst" json:"burst"`

	// SysRoot, ProcRoot, and DevRoot relocate /sys, /proc, and /dev,
	// for hosts that mount them elsewhere and for testing.
	SysRoot  string `yaml:"sys_root" json:"sys_root"`
	ProcRoot string `yaml:"proc_root" json:"proc_root"`
	DevRoot  string `yaml:"dev_root" json:"dev_root"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			SocketPath:   DefaultSocketPath,
			SocketMode:   "0777",
			WriteTimeout: Duration(10 * time.Second),
		},
		GPU: GPUConfig{
			QueryTimeout: Duration(10 * time.Second),
			Burst:        1,
			SysRoot:      "/sys",
			ProcRoot:     "/proc",
			DevRoot:      "/dev",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the file named by NEUROBRIDGE_CONFIG, or returns
// Default() if the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadFile decodes path into c. Keys absent from the file keep their
// current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml, .json, or .jsonc)", extension)
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Server.SocketPath = expandVars(c.Server.SocketPath, vars)
	c.GPU.SysRoot = expandVars(c.GPU.SysRoot, vars)
	c.GPU.ProcRoot = expandVars(c.GPU.ProcRoot, vars)
	c.GPU.DevRoot = expandVars(c.GPU.DevRoot, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SocketFileMode parses Server.SocketMode as an octal permission mode.
func (c *Config) SocketFileMode() (os.FileMode, error) {
	return ParseSocketMode(c.Server.SocketMode)
}

// ParseSocketMode parses an octal permission string such as "0660" or
// "777". Only permission bits are accepted.
func ParseSocketMode(mode string) (os.FileMode, error) {
	value, err := strconv.ParseUint(mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid socket mode %q: want an octal permission like 0660", mode)
	}
	if value&^uint64(os.ModePerm) != 0 {
		return 0, fmt.Errorf("invalid socket mode %q: only permission bits (0000-0777) are allowed", mode)
	}
	return os.FileMode(value), nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: want debug, info, warn, or error", c.Log.Level)
	}
	return level, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.SocketPath == "" {
		errs = append(errs, errors.New("server.socket_path is required"))
	}
	if _, err := c.SocketFileMode(); err != nil {
		errs = append(errs, fmt.Errorf("server.socket_mode: %w", err))
	}
	if c.Server.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.idle_timeout must not be negative"))
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server.write_timeout must not be negative"))
	}
	if c.GPU.QueryTimeout < 0 {
		errs = append(errs, errors.New("gpu.query_timeout must not be negative"))
	}
	if c.GPU.RateLimit < 0 {
		errs = append(errs, errors.New("gpu.rate_limit must not be negative"))
	}
	if c.GPU.Burst < 0 {
		errs = append(errs, errors.New("gpu.burst must not be negative"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
