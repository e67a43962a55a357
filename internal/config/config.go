package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the resolved application configuration.
type Config struct {
	// BaseURL is the address of the content service the console talks to.
	BaseURL string `mapstructure:"base_url"`
	// PageSize is the number of items fetched per page.
	PageSize int `mapstructure:"page_size"`
	// RequestTimeout bounds every HTTP request to the content service.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// CacheTTL is how long category and schema reads are reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// Realtime subscribes to change notifications from the server.
	Realtime bool `mapstructure:"realtime"`
	// RealtimeDebounce coalesces bursts of change notifications.
	RealtimeDebounce time.Duration `mapstructure:"realtime_debounce"`
	// ConfirmDestructive prompts before deleting items.
	ConfirmDestructive bool `mapstructure:"confirm_destructive"`
	// LogFile receives the console's logs. Empty discards them.
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	Server ServerConfig `mapstructure:"server"`
}

// ServerConfig configures `cmgr serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// DBPath is the SQLite database holding items.
	DBPath string `mapstructure:"db_path"`
	// TypesDir holds one YAML content type definition per category.
	TypesDir string `mapstructure:"types_dir"`
	// Watch reloads content types when TypesDir changes.
	Watch bool `mapstructure:"watch"`
}

// Flag binds a command line flag to a configuration key. A flag set on the
// command line wins over the environment and the config file.
type Flag struct {
	Key  string
	Flag *pflag.Flag
}

// Load reads configuration from ~/.config/cmgr/config.yaml (or ./config.yaml),
// the CMGR_* environment and the given flags.
func Load(flags ...Flag) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(Directory())
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("CMGR")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	for _, f := range flags {
		if f.Flag == nil {
			continue
		}
		if err := v.BindPFlag(f.Key, f.Flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", f.Flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RealtimeDebounce < 0 {
		return fmt.Errorf("realtime_debounce must not be negative, got %s", c.RealtimeDebounce)
	}
	return nil
}

// Directory returns the directory holding config.yaml and the default
// database and content types.
func Directory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cmgr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cmgr")
}
