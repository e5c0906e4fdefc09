package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "BMARKS"
)

// ErrNoUserID is returned when sync is requested without a Tagpacker user id.
var ErrNoUserID = errors.New("tagpacker.user_id is not configured")

// Config holds application configuration.
type Config struct {
	Tagpacker TagpackerConfig `mapstructure:"tagpacker" yaml:"tagpacker"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Cull      CullConfig      `mapstructure:"cull" yaml:"cull"`
}

// TagpackerConfig addresses the remote bookmark source.
type TagpackerConfig struct {
	UserID  string        `mapstructure:"user_id" yaml:"user_id"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DatabaseConfig locates the SQLite file and bounds its connection pool.
type DatabaseConfig struct {
	Path         string `mapstructure:"path" yaml:"path"` // empty = <config dir>/bookmarks.db
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	File   string `mapstructure:"file" yaml:"file"` // empty = <config dir>/bmarks.log
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// CullConfig tunes the dead link checker.
type CullConfig struct {
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ExcludeDomains []string      `mapstructure:"exclude_domains" yaml:"exclude_domains"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Tagpacker: TagpackerConfig{
			BaseURL: "https://tagpacker.com",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Cull: CullConfig{
			Concurrency:    10,
			Timeout:        10 * time.Second,
			ExcludeDomains: []string{"github.com", "gitlab.com"},
		},
	}
}

// DefaultDir returns the default config directory: ~/.config/bmarks
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmarks"), nil
}

// Load reads dir/config.yaml, creating the directory and a default file on
// first run. BMARKS_* environment variables override file values, e.g.
// BMARKS_TAGPACKER_USER_ID.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := ensureDefaultFile(dir); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.resolve(dir)
	return &cfg, nil
}

// RequireUserID returns ErrNoUserID when the remote source is not addressable.
func (c *Config) RequireUserID() error {
	if strings.TrimSpace(c.Tagpacker.UserID) == "" {
		return ErrNoUserID
	}
	return nil
}

// resolve fills paths relative to dir and clamps invalid values.
func (c *Config) resolve(dir string) {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dir, "bookmarks.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "bmarks.log")
	}
	if c.Database.MaxOpenConns < 1 {
		c.Database.MaxOpenConns = 1
	}
	if c.Cull.Concurrency < 1 {
		c.Cull.Concurrency = 1
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("tagpacker.user_id", cfg.Tagpacker.UserID)
	v.SetDefault("tagpacker.base_url", cfg.Tagpacker.BaseURL)
	v.SetDefault("tagpacker.timeout", cfg.Tagpacker.Timeout)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.pretty", cfg.Log.Pretty)
	v.SetDefault("cull.concurrency", cfg.Cull.Concurrency)
	v.SetDefault("cull.timeout", cfg.Cull.Timeout)
	v.SetDefault("cull.exclude_domains", cfg.Cull.ExcludeDomains)
}

// ensureDefaultFile writes config.yaml with defaults if it does not exist.
func ensureDefaultFile(dir string) error {
	path := filepath.Join(dir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}

	header := "# bmarks configuration\n# Set tagpacker.user_id to enable `bmarks sync`.\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0644)
}
