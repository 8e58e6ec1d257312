// Package config loads server configuration from TOML files and the
// environment. Priority: defaults -> file -> env.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// Transport names accepted by the -transport flag and [server] section.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config holds all supabase-mcp configuration.
type Config struct {
	Server     ServerConfig         `toml:"server"`
	Supabase   SupabaseConfig       `toml:"supabase"`
	Management ManagementConfig     `toml:"management"`
	Approvals  ApprovalsConfig      `toml:"approvals"`
	Logging    common.LoggingConfig `toml:"logging"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name      string `toml:"name"`
	Transport string `toml:"transport"` // "stdio" (default) or "sse"
	Port      int    `toml:"port"`
}

// SupabaseConfig holds the project endpoint and service key used by the
// data, storage, functions, and auth admin clients.
type SupabaseConfig struct {
	URL        string `toml:"url"`
	ServiceKey string `toml:"service_key"`
}

// ManagementConfig holds the Management API endpoint and access token used
// by the project/organization tools.
type ManagementConfig struct {
	BaseURL     string `toml:"base_url"`
	AccessToken string `toml:"access_token"`
}

// ApprovalsConfig controls the tool-approval gate. The gate only takes
// effect on the SSE transport; stdio always dispatches directly.
type ApprovalsConfig struct {
	Enabled bool `toml:"enabled"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "supabase-mcp",
			Transport: TransportStdio,
			Port:      8765,
		},
		Management: ManagementConfig{
			BaseURL: "https://api.supabase.com",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/supabase-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load loads configuration with priority: defaults -> file -> env.
// A missing config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The three SUPABASE_* secrets are the canonical way to configure the
// server; the TOML file exists for local development convenience.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		cfg.Supabase.ServiceKey = v
	}
	if v := os.Getenv("SUPABASE_ACCESS_TOKEN"); v != "" {
		cfg.Management.AccessToken = v
	}
	if v := os.Getenv("SUPABASE_MANAGEMENT_URL"); v != "" {
		cfg.Management.BaseURL = v
	}
	if v := os.Getenv("SUPABASE_MCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("SUPABASE_MCP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("SUPABASE_MCP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SUPABASE_MCP_APPROVALS"); v != "" {
		cfg.Approvals.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks that every required startup secret is present.
// Absence of any secret is a fatal startup fault.
func (c *Config) Validate() error {
	var missing []string
	if c.Supabase.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Supabase.ServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if c.Management.AccessToken == "" {
		missing = append(missing, "SUPABASE_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	switch c.Server.Transport {
	case TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("unknown transport %q (expected %q or %q)",
			c.Server.Transport, TransportStdio, TransportSSE)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}
