// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/xonecas/symbagent/internal/highlight"
)

// Config is the root configuration structure. Connection settings are
// normally supplied by environment variables (see ApplyEnvOverrides); the
// TOML file carries the settings that don't belong in the environment:
// UI theme, cache TTL, and tool auto-approval defaults.
type Config struct {
	Transport TransportConfig `toml:"transport"`
	Cache     CacheConfig     `toml:"cache"`
	UI        UIConfig        `toml:"ui"`
	Tools     ToolsConfig     `toml:"tools"`
}

// TransportConfig holds the single chat-completion endpoint this core talks to.
type TransportConfig struct {
	Endpoint        string  `toml:"endpoint"` // overridden by LLM_API_URL
	APIKey          string  `toml:"api_key"`  // overridden by LLM_API_KEY
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	TimeoutSeconds  int     `toml:"timeout_seconds"` // overridden by LLM_API_TIMEOUT
	Dialect         string  `toml:"dialect"`         // "chat" or "responses"
	ContextWindow   int     `toml:"context_window"`  // model-reported max tokens per request
	PromptPrice     float64 `toml:"prompt_price_per_token"`
	CompletionPrice float64 `toml:"completion_price_per_token"`
}

// TimeoutOrDefault returns the configured unary request timeout in seconds,
// defaulting to 600 per spec.md's "default 600 seconds".
func (t TransportConfig) TimeoutOrDefault() int {
	if t.TimeoutSeconds <= 0 {
		return 600
	}
	return t.TimeoutSeconds
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma syntax highlighting theme used by the renderer.
	SyntaxTheme string `toml:"syntax_theme"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or the package default.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return highlight.DefaultTheme
	}
	return u.SyntaxTheme
}

// CacheConfig holds web fetch/search cache settings.
type CacheConfig struct {
	TTLHours int `toml:"ttl_hours"`
}

// CacheTTLOrDefault returns the configured TTL or 24 hours if unset.
func (c CacheConfig) CacheTTLOrDefault() int {
	if c.TTLHours <= 0 {
		return 24
	}
	return c.TTLHours
}

// ToolsConfig holds per-tool approval defaults.
type ToolsConfig struct {
	AutoApprove []string `toml:"auto_approve"`
}

// Load reads configuration from a TOML file (if present — a missing file is
// not an error since environment variables can supply everything) and
// applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Transport.Endpoint == "" {
		errs = append(errs, errors.New("transport.endpoint is required (set LLM_API_URL or config.toml)"))
	} else if err := validateEndpoint(c.Transport.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("transport.endpoint=%q is invalid: %w", c.Transport.Endpoint, err))
	}

	if c.Transport.Temperature < 0.0 || c.Transport.Temperature > 2.0 {
		errs = append(errs, fmt.Errorf("transport.temperature=%v must be between 0.0 and 2.0", c.Transport.Temperature))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateEndpoint(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("missing scheme or host")
	}
	return nil
}

// ApplyEnvOverrides applies the environment variables named in spec.md §6
// on top of whatever the TOML file provided.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.Transport.Endpoint = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.Transport.APIKey = v
	}
	if v := os.Getenv("LLM_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Transport.TimeoutSeconds = secs
		}
	}
}

// QuickPressSeconds returns the tab-double-tap threshold from
// LILUSH_QUICK_PRESS, defaulting to 0.4 seconds.
func QuickPressSeconds() float64 {
	v := os.Getenv("LILUSH_QUICK_PRESS")
	if v == "" {
		return 0.4
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0.4
	}
	return f
}

// DebugMode reports whether LLM_DEBUG_MODE requests verbose transport logging.
func DebugMode() bool {
	v := os.Getenv("LLM_DEBUG_MODE")
	return v == "1" || v == "true" || v == "yes"
}

// DebugFile returns the path LLM_DEBUG_FILE names for raw transport logging, if any.
func DebugFile() string {
	return os.Getenv("LLM_DEBUG_FILE")
}

// ExaAPIKey returns the API key used by the WebSearch tool (Exa AI search).
func ExaAPIKey() string {
	return os.Getenv("EXA_API_KEY")
}

// DataDir returns the path to the agent's data directory (~/.config/symbagent).
func DataDir() (string, error) {
	home := os.Getenv("HOME")
	var err error
	if home == "" {
		home, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(home, ".config", "symbagent"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// ConversationsDir returns ~/.config/symbagent/agent/conversations, creating it if needed.
func ConversationsDir() (string, error) {
	return ensureSubdir("agent", "conversations")
}

// PromptsDir returns ~/.config/symbagent/agent/prompts, creating it if needed.
func PromptsDir() (string, error) {
	return ensureSubdir("agent", "prompts")
}

// SystemPromptsDir returns ~/.config/symbagent/agent/system_prompts, creating it if needed.
func SystemPromptsDir() (string, error) {
	return ensureSubdir("agent", "system_prompts")
}

func ensureSubdir(parts ...string) (string, error) {
	base, err := DataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(append([]string{base}, parts...)...)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
