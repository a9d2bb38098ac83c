// Package config loads huh settings.
//
// Settings are layered: built-in defaults, then the TOML file at
// $XDG_CONFIG_HOME/huh/config.toml, then a .env file in the working
// directory, then HUH_* environment variables. Command-line flags are
// applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/layout"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds huh configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Ollama  OllamaConfig  `toml:"ollama"`
	Cache   CacheConfig   `toml:"cache"`
	Events  EventsConfig  `toml:"events"`
	Graph   GraphConfig   `toml:"graph"`
	Session SessionConfig `toml:"session"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// OllamaConfig selects the model service.
type OllamaConfig struct {
	URL     string   `toml:"url"`
	Model   string   `toml:"model"`
	Timeout Duration `toml:"timeout"`
	Retries int      `toml:"retries"`
}

// CacheConfig selects the response and layout cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // "memory", "file", "redis", "none"
	Size          int      `toml:"size"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// EventsConfig selects where view and ingest events go. An empty NATSURL
// disables publishing.
type EventsConfig struct {
	NATSURL string `toml:"nats_url"`
}

// GraphConfig controls materialization and the initial layout.
type GraphConfig struct {
	Layout         string `toml:"layout"`
	SpecialFormat  bool   `toml:"special_format"`
	NameKey        string `toml:"name_key"`
	MaxExtraFields int    `toml:"max_extra_fields"`
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	Capacity int      `toml:"capacity"`
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("90s", "2h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Ollama: OllamaConfig{
			URL:     "http://localhost:11434",
			Model:   "gemma3",
			Timeout: Duration{5 * time.Minute},
			Retries: 2,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			Size:    512,
			TTL:     Duration{24 * time.Hour},
		},
		Graph: GraphConfig{
			Layout:         string(layout.DefaultKind),
			SpecialFormat:  true,
			NameKey:        "name",
			MaxExtraFields: 1,
		},
		Session: SessionConfig{
			Capacity: 1024,
			TTL:      Duration{2 * time.Hour},
		},
	}
}

// ConfigDir returns the huh config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "huh")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the default directory of the file cache.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "huh")
}

// Load builds the configuration. An empty path means [Path]; a missing file
// is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = CacheDir()
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := layout.ParseKind(c.Graph.Layout); err != nil {
		return err
	}
	if err := huherrors.ValidateURL(c.Ollama.URL); err != nil {
		return fmt.Errorf("ollama url: %w", err)
	}
	if err := huherrors.ValidateModelName(c.Ollama.Model); err != nil {
		return fmt.Errorf("ollama model: %w", err)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis needs redis_addr")
	}
	return nil
}

// LayoutKind returns the configured initial layout kind.
func (c *Config) LayoutKind() layout.Kind {
	k, err := layout.ParseKind(c.Graph.Layout)
	if err != nil {
		return layout.DefaultKind
	}
	return k
}

// =============================================================================
// Environment
// =============================================================================

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "HUH_ADDR")
	setString(&c.Ollama.URL, "HUH_OLLAMA_URL")
	setString(&c.Ollama.Model, "HUH_MODEL")
	setString(&c.Cache.Backend, "HUH_CACHE")
	setString(&c.Cache.Dir, "HUH_CACHE_DIR")
	setString(&c.Cache.RedisAddr, "HUH_REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "HUH_REDIS_PASSWORD")
	setString(&c.Events.NATSURL, "HUH_NATS_URL")
	setString(&c.Graph.Layout, "HUH_LAYOUT")

	if v := env("HUH_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HUH_REDIS_DB: %w", err)
		}
		c.Cache.RedisDB = n
	}
	if v := env("HUH_OLLAMA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HUH_OLLAMA_TIMEOUT: %w", err)
		}
		c.Ollama.Timeout = Duration{d}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
