package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ACCESS_TOKEN",
		"SUPABASE_MANAGEMENT_URL", "SUPABASE_MCP_TRANSPORT", "SUPABASE_MCP_PORT",
		"SUPABASE_MCP_LOG_LEVEL", "SUPABASE_MCP_APPROVALS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Transport != TransportStdio {
		t.Errorf("transport = %q, want stdio", cfg.Server.Transport)
	}
	if cfg.Server.Port != 8765 {
		t.Errorf("port = %d, want 8765", cfg.Server.Port)
	}
	if cfg.Management.BaseURL != "https://api.supabase.com" {
		t.Errorf("management base = %q", cfg.Management.BaseURL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Server.Name != "supabase-mcp" {
		t.Errorf("name = %q", cfg.Server.Name)
	}
}

func TestMalformedFileIsError(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[server\nport ="), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("malformed file should be an error")
	}
}

func TestFileThenEnvPriority(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "supabase-mcp.toml")
	os.WriteFile(path, []byte(`
[server]
transport = "sse"
port = 9000

[supabase]
url = "https://file.supabase.co"
service_key = "file-key"
`), 0644)

	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_MCP_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Supabase.URL != "https://env.supabase.co" {
		t.Errorf("env must win over file, got %q", cfg.Supabase.URL)
	}
	if cfg.Supabase.ServiceKey != "file-key" {
		t.Errorf("file value should survive, got %q", cfg.Supabase.ServiceKey)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Server.Transport != TransportSSE {
		t.Errorf("transport = %q, want sse", cfg.Server.Transport)
	}
}

func TestValidateNamesEveryMissingSecret(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ACCESS_TOKEN"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should name %s, got %q", want, err)
		}
	}
}

func TestValidatePasses(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	t.Setenv("SUPABASE_ACCESS_TOKEN", "sbp_abc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadTransport(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	t.Setenv("SUPABASE_ACCESS_TOKEN", "sbp_abc")
	t.Setenv("SUPABASE_MCP_TRANSPORT", "carrier-pigeon")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestApprovalsEnvToggle(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_MCP_APPROVALS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Approvals.Enabled {
		t.Error("approvals should be enabled")
	}
}
