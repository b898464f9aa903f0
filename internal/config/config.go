package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyquery/internal/models"
	"github.com/spf13/viper"
)

// AppName names the config directory
const AppName = "lazyquery"

// ErrDataSourceNotFound is returned when no data source has the requested name
var ErrDataSourceNotFound = errors.New("data source not found")

// Config holds all application configuration
type Config struct {
	General     GeneralConfig             `mapstructure:"general"`
	Dialect     DialectConfig             `mapstructure:"dialect"`
	DataSources []models.DataSourceConfig `mapstructure:"data_sources"`
	Library     LibraryConfig             `mapstructure:"library"`
	History     HistoryConfig             `mapstructure:"history"`
	Performance PerformanceConfig         `mapstructure:"performance"`
	Log         LogConfig                 `mapstructure:"log"`
	UI          UIConfig                  `mapstructure:"ui"`
}

type GeneralConfig struct {
	DefaultDataSource string `mapstructure:"default_data_source"`
	// ListBoxThreshold is the largest distinct-value count offered as a list box
	ListBoxThreshold int `mapstructure:"list_box_threshold"`
	RowLimit         int `mapstructure:"row_limit"`
}

type DialectConfig struct {
	DB2Markers []string `mapstructure:"db2_markers"`
}

type LibraryConfig struct {
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	Persist    bool   `mapstructure:"persist"`
	Path       string `mapstructure:"path"`
}

type PerformanceConfig struct {
	QueryTimeout     int `mapstructure:"query_timeout"`      // milliseconds
	MetadataCacheTTL int `mapstructure:"metadata_cache_ttl"` // seconds
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// QueryTimeoutDuration returns the query timeout, zero meaning none
func (p PerformanceConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(p.QueryTimeout) * time.Millisecond
}

// MetadataCacheDuration returns how long metadata listings stay cached
func (p PerformanceConfig) MetadataCacheDuration() time.Duration {
	return time.Duration(p.MetadataCacheTTL) * time.Second
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			ListBoxThreshold: 25,
			RowLimit:         10000,
		},
		Dialect: DialectConfig{
			DB2Markers: []string{"NEON_DSN"},
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
			Persist:    true,
		},
		Performance: PerformanceConfig{
			QueryTimeout:     30000,
			MetadataCacheTTL: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Theme: "default",
		},
	}
}

// Load loads configuration from the standard locations.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := newViper()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths in priority order
	// 1. User config directory
	if configDir, err := GetConfigPath(); err == nil {
		v.AddConfigPath(configDir)
	}

	// 2. Current directory
	v.AddConfigPath(".")

	// 3. Default config directory
	v.AddConfigPath("./config")

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFile loads configuration from an explicit file
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	d := GetDefaults()

	v.SetDefault("general.default_data_source", d.General.DefaultDataSource)
	v.SetDefault("general.list_box_threshold", d.General.ListBoxThreshold)
	v.SetDefault("general.row_limit", d.General.RowLimit)
	v.SetDefault("dialect.db2_markers", d.Dialect.DB2Markers)
	v.SetDefault("library.path", "")
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("history.persist", d.History.Persist)
	v.SetDefault("history.path", "")
	v.SetDefault("performance.query_timeout", d.Performance.QueryTimeout)
	v.SetDefault("performance.metadata_cache_ttl", d.Performance.MetadataCacheTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("ui.theme", d.UI.Theme)

	v.SetEnvPrefix("LAZYQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// DataSource returns the data source named name (case-insensitive).
// An empty name selects the default data source.
func (c *Config) DataSource(name string) (models.DataSourceConfig, error) {
	if name == "" {
		name = c.General.DefaultDataSource
	}
	if name == "" && len(c.DataSources) == 1 {
		return c.DataSources[0], nil
	}
	for _, ds := range c.DataSources {
		if strings.EqualFold(ds.Name, name) {
			return ds, nil
		}
	}
	return models.DataSourceConfig{}, fmt.Errorf("%w: %q", ErrDataSourceNotFound, name)
}

// LibraryPath returns the query library file, defaulting into the config directory
func (c *Config) LibraryPath() (string, error) {
	if c.Library.Path != "" {
		return c.Library.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "queries.yaml"), nil
}

// HistoryPath returns the history database file, defaulting into the config directory
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
