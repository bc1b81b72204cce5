package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Config represents the snapreview configuration.
type Config struct {
	Provider    string           `json:"provider"`
	Model       string           `json:"model,omitempty"`
	Language    string           `json:"language"`
	Format      string           `json:"format"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"maxTokens"`
	Store       StoreConfig      `json:"store"`
	Cache       CacheConfig      `json:"cache"`
	Privacy     PrivacyConfig    `json:"privacy"`
	Formatting  FormattingConfig `json:"formatting"`
}

// StoreConfig selects where credentials and the saved session live.
type StoreConfig struct {
	// Backend is one of file, memory or nats.
	Backend string `json:"backend"`
	Dir     string `json:"dir,omitempty"`
	NATSURL string `json:"natsURL,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled     bool   `json:"enabled"`
	Dir         string `json:"dir,omitempty"`
	TTLSeconds  int    `json:"ttlSeconds"`
	MemoryBytes int64  `json:"memoryBytes"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// FormattingConfig controls post-processing of review code blocks.
type FormattingConfig struct {
	Enabled      bool   `json:"enabled"`
	Prettier     string `json:"prettier"`
	SQLFormatter string `json:"sqlFormatter"`
}

var (
	backends = []string{"file", "memory", "nats"}
	formats  = []string{"text", "markdown", "md", "json"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:    "gemini",
		Language:    "javascript",
		Format:      "text",
		Temperature: 0.2,
		MaxTokens:   4096,
		Store: StoreConfig{
			Backend: "file",
		},
		Cache: CacheConfig{
			Enabled:     true,
			TTLSeconds:  86400,
			MemoryBytes: 16 << 20,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
		Formatting: FormattingConfig{
			Enabled:      true,
			Prettier:     "prettier",
			SQLFormatter: "sql-formatter",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for snapreview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "snapreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "snapreview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "snapreview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "snapreview"), nil
	default:
		return filepath.Join(home, ".config", "snapreview"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file. Keys absent
// from the file keep their default, so an explicit false in the file wins
// while an omitted bool does not. A missing file yields Default().
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags; empty values are ignored.
func Load(ctx context.Context, overrides map[string]string) (Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper(), overrides)
}

// LoadWith is Load with an explicit environment source.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper, overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(ctx, &cfg, lookuper); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and ranged fields.
func (c Config) Validate() error {
	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("store.backend must be one of %s, got %q", strings.Join(backends, ", "), c.Store.Backend)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("format must be one of text, markdown, json, got %q", c.Format)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("maxTokens must not be negative, got %d", c.MaxTokens)
	}
	return nil
}

// envOverrides holds the SNAPREVIEW_* variables. Unset variables stay nil.
type envOverrides struct {
	Provider          *string  `env:"SNAPREVIEW_PROVIDER,noinit"`
	Model             *string  `env:"SNAPREVIEW_MODEL,noinit"`
	Language          *string  `env:"SNAPREVIEW_LANGUAGE,noinit"`
	Format            *string  `env:"SNAPREVIEW_FORMAT,noinit"`
	Temperature       *float64 `env:"SNAPREVIEW_TEMPERATURE,noinit"`
	MaxTokens         *int     `env:"SNAPREVIEW_MAX_TOKENS,noinit"`
	StoreBackend      *string  `env:"SNAPREVIEW_STORE_BACKEND,noinit"`
	StoreDir          *string  `env:"SNAPREVIEW_STORE_DIR,noinit"`
	NATSURL           *string  `env:"SNAPREVIEW_NATS_URL,noinit"`
	NATSBucket        *string  `env:"SNAPREVIEW_NATS_BUCKET,noinit"`
	CacheEnabled      *bool    `env:"SNAPREVIEW_CACHE_ENABLED,noinit"`
	CacheDir          *string  `env:"SNAPREVIEW_CACHE_DIR,noinit"`
	CacheTTLSeconds   *int     `env:"SNAPREVIEW_CACHE_TTL_SECONDS,noinit"`
	RedactSecrets     *bool    `env:"SNAPREVIEW_REDACT_SECRETS,noinit"`
	FormattingEnabled *bool    `env:"SNAPREVIEW_FORMATTING_ENABLED,noinit"`
	Prettier          *string  `env:"SNAPREVIEW_PRETTIER,noinit"`
	SQLFormatter      *string  `env:"SNAPREVIEW_SQL_FORMATTER,noinit"`
}

func mergeEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	set(&cfg.Provider, env.Provider)
	set(&cfg.Model, env.Model)
	set(&cfg.Language, env.Language)
	set(&cfg.Format, env.Format)
	set(&cfg.Temperature, env.Temperature)
	set(&cfg.MaxTokens, env.MaxTokens)
	set(&cfg.Store.Backend, env.StoreBackend)
	set(&cfg.Store.Dir, env.StoreDir)
	set(&cfg.Store.NATSURL, env.NATSURL)
	set(&cfg.Store.Bucket, env.NATSBucket)
	set(&cfg.Cache.Enabled, env.CacheEnabled)
	set(&cfg.Cache.Dir, env.CacheDir)
	set(&cfg.Cache.TTLSeconds, env.CacheTTLSeconds)
	set(&cfg.Privacy.RedactSecrets, env.RedactSecrets)
	set(&cfg.Formatting.Enabled, env.FormattingEnabled)
	set(&cfg.Formatting.Prettier, env.Prettier)
	set(&cfg.Formatting.SQLFormatter, env.SQLFormatter)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := overrides[k]
		if v == "" {
			continue
		}
		if err := SetField(cfg, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the names accepted by SetField.
var Keys = []string{
	"provider", "model", "language", "format", "temperature", "maxTokens",
	"store.backend", "store.dir", "store.natsURL", "store.bucket",
	"cache.enabled", "cache.dir", "cache.ttlSeconds", "cache.memoryBytes",
	"privacy.redactSecrets", "privacy.redactPaths",
	"formatting.enabled", "formatting.prettier", "formatting.sqlFormatter",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "language":
		cfg.Language = strings.ToLower(value)
	case "format":
		cfg.Format = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "store.backend":
		cfg.Store.Backend = value
	case "store.dir":
		cfg.Store.Dir = value
	case "store.natsURL":
		cfg.Store.NATSURL = value
	case "store.bucket":
		cfg.Store.Bucket = value
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "cache.memoryBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cache.memoryBytes must be an integer: %w", err)
		}
		cfg.Cache.MemoryBytes = n
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	case "formatting.enabled":
		return setBool(&cfg.Formatting.Enabled, key, value)
	case "formatting.prettier":
		cfg.Formatting.Prettier = value
	case "formatting.sqlFormatter":
		cfg.Formatting.SQLFormatter = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
