// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for glowchat.
//
// Configuration lives in a single TOML file at ~/.glowchat/config.toml.
// A missing file is not an error: defaults apply, and the file is
// written on first load so users have something to edit.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/glowchat/internal/ollama"
	"github.com/jeranaias/glowchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete glowchat configuration.
type Config struct {
	// Model is the default Ollama model for new conversations.
	Model string `toml:"model"`

	// CodeTheme names the syntax-highlight style for code blocks.
	CodeTheme string `toml:"code_theme"`

	// Ollama holds daemon connection settings.
	Ollama OllamaConfig `toml:"ollama"`

	// Generation holds sampling parameters passed with every request.
	Generation GenerationConfig `toml:"generation"`
}

// OllamaConfig contains daemon connection settings.
type OllamaConfig struct {
	// BaseURL is the Ollama API endpoint.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds bounds non-streaming requests.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// GenerationConfig contains model sampling parameters.
type GenerationConfig struct {
	Temperature   float64 `toml:"temperature"`
	TopK          int     `toml:"top_k"`
	TopP          float64 `toml:"top_p"`
	RepeatPenalty float64 `toml:"repeat_penalty"`
	NumCtx        int     `toml:"num_ctx"`
	NumThread     int     `toml:"num_thread"`
	// Seed fixes sampling for reproducible replies; 0 leaves it random.
	Seed int `toml:"seed"`
	// UseGPU enables GPU offload; NumGPU is ignored when false.
	UseGPU bool `toml:"use_gpu"`
	NumGPU int  `toml:"num_gpu"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:     "mistral",
		CodeTheme: "dracula",
		Ollama: OllamaConfig{
			BaseURL:        "http://127.0.0.1:11434",
			TimeoutSeconds: 30,
		},
		Generation: GenerationConfig{
			Temperature:   0.7,
			TopK:          40,
			TopP:          0.9,
			RepeatPenalty: 1.1,
			NumCtx:        4096,
			NumThread:     8,
			Seed:          42,
			UseGPU:        false,
			NumGPU:        0,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the glowchat configuration directory (~/.glowchat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".glowchat"), nil
}

// Path returns the path of the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file from the default location. On first run
// the defaults are written out so the user has a file to edit; a write
// failure there is non-fatal since defaults still apply in memory.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		_ = SaveTo(cfg, path)
		return cfg, nil
	}

	return LoadFrom(path)
}

// LoadFrom reads a config file, layering it over the defaults so keys
// absent from the file keep their built-in values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path atomically with private
// permissions.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# glowchat configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700)
}

// Validate checks ranges on the sampling parameters.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model must not be empty")
	}
	g := c.Generation
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of range [0, 2]", g.Temperature)
	}
	if g.TopP < 0 || g.TopP > 1 {
		return fmt.Errorf("config: top_p %v out of range [0, 1]", g.TopP)
	}
	if g.NumCtx < 0 {
		return fmt.Errorf("config: num_ctx must not be negative")
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// Options converts the generation settings into request options.
// NumGPU is only forwarded when GPU offload is enabled, so a stale
// num_gpu value cannot force GPU allocation.
func (c *Config) Options() *ollama.Options {
	opts := &ollama.Options{
		Temperature:   c.Generation.Temperature,
		TopK:          c.Generation.TopK,
		TopP:          c.Generation.TopP,
		RepeatPenalty: c.Generation.RepeatPenalty,
		NumCtx:        c.Generation.NumCtx,
		NumThread:     c.Generation.NumThread,
		Seed:          c.Generation.Seed,
	}
	if c.Generation.UseGPU {
		opts.NumGPU = c.Generation.NumGPU
	}
	return opts
}

// ClientConfig builds the Ollama client settings from the config.
func (c *Config) ClientConfig() *ollama.ClientConfig {
	cc := ollama.DefaultConfig()
	if c.Ollama.BaseURL != "" {
		cc.BaseURL = c.Ollama.BaseURL
	}
	if c.Ollama.TimeoutSeconds > 0 {
		cc.Timeout = time.Duration(c.Ollama.TimeoutSeconds) * time.Second
	}
	cc.DefaultModel = c.Model
	return cc
}

// =============================================================================
// KEY ACCESS
// =============================================================================

// settableKeys lists the keys `glowchat config set` accepts, in display
// order.
var settableKeys = []string{
	"model",
	"code_theme",
	"ollama.base_url",
	"ollama.timeout_seconds",
	"generation.temperature",
	"generation.top_k",
	"generation.top_p",
	"generation.repeat_penalty",
	"generation.num_ctx",
	"generation.num_thread",
	"generation.seed",
	"generation.use_gpu",
	"generation.num_gpu",
}

// Keys returns every key accepted by Set.
func Keys() []string {
	out := make([]string, len(settableKeys))
	copy(out, settableKeys)
	return out
}

// Get returns the current value of a dotted key as a display string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "model":
		return c.Model, nil
	case "code_theme":
		return c.CodeTheme, nil
	case "ollama.base_url":
		return c.Ollama.BaseURL, nil
	case "ollama.timeout_seconds":
		return strconv.Itoa(c.Ollama.TimeoutSeconds), nil
	case "generation.temperature":
		return formatFloat(c.Generation.Temperature), nil
	case "generation.top_k":
		return strconv.Itoa(c.Generation.TopK), nil
	case "generation.top_p":
		return formatFloat(c.Generation.TopP), nil
	case "generation.repeat_penalty":
		return formatFloat(c.Generation.RepeatPenalty), nil
	case "generation.num_ctx":
		return strconv.Itoa(c.Generation.NumCtx), nil
	case "generation.num_thread":
		return strconv.Itoa(c.Generation.NumThread), nil
	case "generation.seed":
		return strconv.Itoa(c.Generation.Seed), nil
	case "generation.use_gpu":
		return strconv.FormatBool(c.Generation.UseGPU), nil
	case "generation.num_gpu":
		return strconv.Itoa(c.Generation.NumGPU), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set updates a dotted key from its string form, validating the result.
func (c *Config) Set(key, value string) error {
	updated := *c
	switch key {
	case "model":
		updated.Model = value
	case "code_theme":
		updated.CodeTheme = value
	case "ollama.base_url":
		updated.Ollama.BaseURL = value
	case "ollama.timeout_seconds":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Ollama.TimeoutSeconds = n
	case "generation.temperature":
		f, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		updated.Generation.Temperature = f
	case "generation.top_k":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Generation.TopK = n
	case "generation.top_p":
		f, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		updated.Generation.TopP = f
	case "generation.repeat_penalty":
		f, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		updated.Generation.RepeatPenalty = f
	case "generation.num_ctx":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Generation.NumCtx = n
	case "generation.num_thread":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Generation.NumThread = n
	case "generation.seed":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Generation.Seed = n
	case "generation.use_gpu":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		updated.Generation.UseGPU = b
	case "generation.num_gpu":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		updated.Generation.NumGPU = n
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)",
			key, strings.Join(settableKeys, ", "))
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q is not an integer", key, value)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q is not a number", key, value)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
