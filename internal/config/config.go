package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	MyJD      MyJDConfig      `mapstructure:"myjd"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// DeveloperMode swaps the real device client for the in-memory mock.
	DeveloperMode bool `mapstructure:"developer_mode"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MyJDConfig holds MyJDownloader account and device settings. These values
// are secrets; they never appear in API responses or logs.
type MyJDConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	AppKey   string `mapstructure:"appkey"`
	DeviceID string `mapstructure:"deviceid"`
	Endpoint string `mapstructure:"endpoint"`
}

// DownloadsConfig holds download destination policy.
type DownloadsConfig struct {
	BasePath          string              `mapstructure:"base_path"`
	DefaultCategory   string              `mapstructure:"default_category"`
	AllowedCategories []string            `mapstructure:"allowed_categories"`
	CategoryAliases   map[string][]string `mapstructure:"category_aliases"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// RedactedView is the non-sensitive configuration slice exposed over the
// API. Credentials and device identity stay out.
type RedactedView struct {
	BasePath          string   `json:"base_path"`
	DefaultCategory   string   `json:"default_category"`
	AllowedCategories []string `json:"allowed_categories"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.jdbridge")
	}

	v.SetEnvPrefix("JDBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("myjd.appkey", "jdbridge")
	v.SetDefault("myjd.endpoint", "http://localhost:3128")

	v.SetDefault("downloads.base_path", "/downloads")
	v.SetDefault("downloads.default_category", "other")
	v.SetDefault("downloads.allowed_categories", []string{"other"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("developer_mode", false)
}

// Validate checks that the configuration is complete enough to talk to a
// device. Developer mode skips the credential requirement.
func (c *Config) Validate() error {
	if !c.DeveloperMode {
		if c.MyJD.Username == "" || c.MyJD.Password == "" {
			return fmt.Errorf("myjd.username and myjd.password are required")
		}
		if c.MyJD.DeviceID == "" {
			return fmt.Errorf("myjd.deviceid is required")
		}
	}
	if c.Downloads.BasePath == "" {
		return fmt.Errorf("downloads.base_path is required")
	}
	if len(c.Downloads.AllowedCategories) == 0 {
		return fmt.Errorf("downloads.allowed_categories must not be empty")
	}
	if c.Downloads.DefaultCategory != "" && !c.CategoryAllowed(c.Downloads.DefaultCategory) {
		return fmt.Errorf("downloads.default_category %q is not in allowed_categories", c.Downloads.DefaultCategory)
	}
	return nil
}

// CategoryAllowed reports whether name is in the allow-list (case-sensitive).
func (c *Config) CategoryAllowed(name string) bool {
	for _, allowed := range c.Downloads.AllowedCategories {
		if name == allowed {
			return true
		}
	}
	return false
}

// Redacted returns the configuration view safe for API exposure.
func (c *Config) Redacted() RedactedView {
	categories := make([]string, len(c.Downloads.AllowedCategories))
	copy(categories, c.Downloads.AllowedCategories)

	return RedactedView{
		BasePath:          c.Downloads.BasePath,
		DefaultCategory:   c.Downloads.DefaultCategory,
		AllowedCategories: categories,
	}
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
