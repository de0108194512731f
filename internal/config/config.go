// Package config loads recall's configuration from defaults, an optional
// file and RECALL_ environment variables.
package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rcliao/recall/internal/embedding"
	"github.com/rcliao/recall/internal/errs"
)

// Config is the top-level recall configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Embed   EmbedConfig   `mapstructure:"embed"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Redact  RedactConfig  `mapstructure:"redact"`
}

// StorageConfig locates the collection file.
type StorageConfig struct {
	Path     string `mapstructure:"path"`
	Root     string `mapstructure:"root"`
	MaxItems int    `mapstructure:"max_items"`
}

// EmbedConfig selects the embedding provider.
type EmbedConfig struct {
	Provider string `mapstructure:"provider"`
	Dims     int    `mapstructure:"dims"`
	Model    string `mapstructure:"model"`
	URL      string `mapstructure:"url"`
	APIKey   string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type RedactConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SecretResolver looks up a secret by service and key.
type SecretResolver interface {
	Retrieve(service, key string) (string, error)
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix RECALL_). keyring:// values are
// resolved through the OS keyring.
func Load(path string) (*Config, error) {
	return LoadWith(path, KeyringResolver{})
}

// LoadWith is Load with an explicit secret resolver.
func LoadWith(path string, secrets SecretResolver) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrapf(err, errs.CodeConfigLoadFailure, "reading config %s", path)
		}
	}

	if secrets != nil {
		resolveSecrets(v, secrets)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(err, errs.CodeConfigValidateInvalidValue, "unmarshalling config")
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Storage.Root = expandHome(cfg.Storage.Root)
	if cfg.Embed.Dims == 0 && cfg.Embed.Provider == "hash" {
		cfg.Embed.Dims = embedding.DefaultDims
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errs.Wrap(errors.Join(problems...), errs.CodeConfigValidateInvalidValue, "validating config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", "~/.recall/memory.jsonl")
	v.SetDefault("storage.root", "~/.recall")
	v.SetDefault("storage.max_items", 5000)
	v.SetDefault("embed.provider", "hash")
	v.SetDefault("embed.dims", 0)
	v.SetDefault("embed.model", "")
	v.SetDefault("embed.url", "")
	v.SetDefault("embed.api_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.listen", "127.0.0.1:8765")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("redact.enabled", true)
}

// Validate checks the configuration for logical errors, collecting all
// issues rather than stopping at the first one.
func (c *Config) Validate() []error {
	var problems []error

	if c.Storage.Path == "" {
		problems = append(problems, invalid("storage.path must not be empty"))
	}
	if c.Storage.MaxItems < 1 {
		problems = append(problems, invalid("storage.max_items must be at least 1, got %d", c.Storage.MaxItems))
	}

	switch c.Embed.Provider {
	case "hash", "ollama", "openai":
	default:
		problems = append(problems, invalid("embed.provider must be one of [hash, ollama, openai], got %q", c.Embed.Provider))
	}
	// 0 leaves the size to the remote provider's model.
	if c.Embed.Dims < 0 || (c.Embed.Dims == 0 && c.Embed.Provider == "hash") {
		problems = append(problems, invalid("embed.dims must be at least 1, got %d", c.Embed.Dims))
	}
	if c.Embed.Provider == "openai" && IsKeyringURI(c.Embed.APIKey) {
		problems = append(problems, invalid("embed.api_key references %s which could not be resolved", c.Embed.APIKey))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, invalid("log.level must be one of [debug, info, warn, error], got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, invalid("log.format must be one of [text, json], got %q", c.Log.Format))
	}

	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		problems = append(problems, invalid("server.listen must be a valid host:port address, got %q", c.Server.Listen))
	}

	return problems
}

// EmbeddingSettings returns the embedder factory settings.
func (c *Config) EmbeddingSettings() embedding.Settings {
	return embedding.Settings{
		Provider: c.Embed.Provider,
		Dims:     c.Embed.Dims,
		Model:    c.Embed.Model,
		URL:      c.Embed.URL,
		APIKey:   c.Embed.APIKey,
	}
}

func invalid(format string, args ...any) error {
	return errs.Errorf(errs.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
