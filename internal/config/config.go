package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/AnyUserName/gridframe-cli/internal/debounce"
	"github.com/AnyUserName/gridframe-cli/internal/encoder"
)

const appName = "gridframe"

// APIKeyEnv names the environment variable holding the caption credential.
const APIKeyEnv = "GEMINI_API_KEY"

type Config struct {
	PreviewQuality int    `koanf:"preview_quality"` // 1-100 (default: 85)
	ExportQuality  int    `koanf:"export_quality"`  // 1-100 (default: 95)
	DebounceMS     int    `koanf:"debounce_ms"`     // crop-anchor quiet period (default: 80)
	OutDir         string `koanf:"out_dir"`

	Caption CaptionConfig `koanf:"caption"`
	Watch   WatchConfig   `koanf:"watch"`
}

// CaptionConfig selects the caption model. The key only comes from the
// environment.
type CaptionConfig struct {
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	APIKey      string  `koanf:"-"`
}

// WatchConfig tunes the hot-folder command.
type WatchConfig struct {
	SettleMS int `koanf:"settle_ms"` // wait after the last write before loading (default: 500)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PreviewQuality: encoder.PreviewQuality,
		ExportQuality:  encoder.ExportQuality,
		DebounceMS:     int(debounce.DefaultDelay / time.Millisecond),
		OutDir:         "./gridframe_out",
		Caption: CaptionConfig{
			Model:       "gemini-1.5-flash",
			Temperature: 0.7,
		},
		Watch: WatchConfig{SettleMS: 500},
	}
}

// Load reads the user config then ./gridframe.toml (last wins).
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order, skipping missing ones.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.OutDir = expandPath(cfg.OutDir)
	cfg.Caption.APIKey = os.Getenv(APIKeyEnv)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		return fmt.Errorf("preview_quality %d outside 1-100", c.PreviewQuality)
	}
	if c.ExportQuality < 1 || c.ExportQuality > 100 {
		return fmt.Errorf("export_quality %d outside 1-100", c.ExportQuality)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS)
	}
	if c.Watch.SettleMS < 0 {
		return fmt.Errorf("watch.settle_ms must not be negative, got %d", c.Watch.SettleMS)
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	return nil
}

// Debounce returns the crop-anchor quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Settle returns the watch settle delay.
func (c *Config) Settle() time.Duration {
	return time.Duration(c.Watch.SettleMS) * time.Millisecond
}

// HasCaptionConfig reports whether caption requests can be made.
func (c *Config) HasCaptionConfig() bool {
	return c.Caption.APIKey != "" && c.Caption.Model != ""
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/gridframe/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./gridframe.toml (pwd, highest priority)
		appName + ".toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
