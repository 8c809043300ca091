package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[transport]
endpoint = "http://localhost:8080/v1/chat/completions"
model = "local-model"
temperature = 0.7
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LLM_API_URL", "https://api.example.com/v1/chat/completions")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_API_TIMEOUT", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.Endpoint != "https://api.example.com/v1/chat/completions" {
		t.Errorf("endpoint override: got %q", cfg.Transport.Endpoint)
	}
	if cfg.Transport.APIKey != "sk-test" {
		t.Errorf("api key override: got %q", cfg.Transport.APIKey)
	}
	if cfg.Transport.TimeoutOrDefault() != 30 {
		t.Errorf("timeout override: got %d", cfg.Transport.TimeoutOrDefault())
	}
}

func TestLoadMissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("LLM_API_URL", "https://api.example.com/v1/chat/completions")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.Endpoint == "" {
		t.Error("expected endpoint from environment")
	}
}

func TestValidateRejectsMissingEndpoint(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestValidateRejectsBadTemperature(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Endpoint: "https://api.example.com", Temperature: 3}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range temperature")
	}
}

func TestTimeoutOrDefault(t *testing.T) {
	var t1 TransportConfig
	if got := t1.TimeoutOrDefault(); got != 600 {
		t.Errorf("default timeout = %d, want 600", got)
	}
}

func TestCacheTTLOrDefault(t *testing.T) {
	var c CacheConfig
	if got := c.CacheTTLOrDefault(); got != 24 {
		t.Errorf("default ttl = %d, want 24", got)
	}
}
