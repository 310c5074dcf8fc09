// Package config loads the cultivator.yaml configuration file.
//
// The config is an explicit struct: every key the server recognizes is a
// named field with a default and a validation rule. Keys the server does
// not recognize are carried through an inline side-channel so a save never
// silently drops someone else's settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file discovered by walking up from the working
// directory.
const FileName = "cultivator.yaml"

// Config is the complete cultivator configuration.
type Config struct {
	Vault   VaultConfig   `yaml:"vault"`
	History HistoryConfig `yaml:"history"`
	Judge   JudgeConfig   `yaml:"judge"`

	// Extra preserves unrecognized top-level keys across load/save.
	Extra map[string]any `yaml:",inline"`
}

// VaultConfig locates the notes directory.
type VaultConfig struct {
	// Path is the vault root. Relative paths resolve against the config
	// file's directory (or the working directory without a config file).
	Path string `yaml:"path"`
	// Include globs select which files count as notes. Default: **/*.md
	Include []string `yaml:"include,omitempty"`
	// Exclude globs remove files from the selection.
	Exclude []string `yaml:"exclude,omitempty"`
}

// HistoryConfig configures the assessment history store.
type HistoryConfig struct {
	// Backend is "file" (single JSON document) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the history file or database location. Relative paths
	// resolve like VaultConfig.Path.
	Path string `yaml:"path"`
	// MaxPerNote caps how many records are kept per note.
	MaxPerNote int `yaml:"max_per_note"`
}

// JudgeConfig configures the LLM judge used by the one-shot CLI path.
type JudgeConfig struct {
	// Provider is "openai", "anthropic", or empty to disable the
	// provider-backed path (the MCP two-phase flow needs no provider).
	Provider string `yaml:"provider,omitempty"`
	// Model names the model to evaluate with.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider endpoint. For the openai provider
	// this is how an OpenAI-compatible server such as Ollama is reached.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	// Temperature controls sampling randomness, 0 to 1.
	Temperature float64 `yaml:"temperature"`
	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// Default returns a Config with working defaults: file-backed history next
// to the vault, no judge provider.
func Default() *Config {
	return &Config{
		Vault: VaultConfig{
			Path: ".",
		},
		History: HistoryConfig{
			Backend:    "file",
			Path:       ".cultivator/history.json",
			MaxPerNote: 50,
		},
		Judge: JudgeConfig{
			Temperature: 0.2,
		},
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Vault.Path == "" {
		return fmt.Errorf("vault.path is required")
	}
	switch c.History.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("history.backend must be \"file\" or \"sqlite\", got %q", c.History.Backend)
	}
	if c.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}
	if c.History.MaxPerNote < 1 {
		return fmt.Errorf("history.max_per_note must be at least 1, got %d", c.History.MaxPerNote)
	}
	switch c.Judge.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("judge.provider must be \"openai\" or \"anthropic\", got %q", c.Judge.Provider)
	}
	if c.Judge.Provider != "" && c.Judge.Model == "" {
		return fmt.Errorf("judge.model is required when judge.provider is set")
	}
	if c.Judge.Temperature < 0 || c.Judge.Temperature > 1 {
		return fmt.Errorf("judge.temperature must be between 0 and 1, got %g", c.Judge.Temperature)
	}
	return nil
}

// LoadFromFile reads and validates one config file. Defaults apply to
// every key the file leaves out.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Load discovers cultivator.yaml by walking up from the working directory
// and returns it together with the directory it was found in. Without a
// config file anywhere up the tree, Load returns defaults rooted at the
// working directory.
func Load() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, FileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := LoadFromFile(candidate)
			if err != nil {
				return nil, "", err
			}
			return cfg, current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Default(), dir, nil
		}
		current = parent
	}
}

// Save writes the config back to dir, keeping unrecognized keys.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}

// ResolvePath turns a possibly-relative configured path into an absolute
// one anchored at the config root.
func ResolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
