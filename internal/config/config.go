// Package config provides configuration management for ciclowiki using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from .ciclowiki.yml (or CICLOWIKI_CONFIG_FILE), overridden by
// CICLOWIKI_<SECTION>_<OPTION> environment variables, overridden by flags.
// The browser section carries the page controller's tunables: the artificial
// load delay, the mobile breakpoint, and the page shown on first load.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when a value is not set anywhere.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 8080
	DefaultLoadDelay   = 300 * time.Millisecond
	DefaultBreakpoint  = 768
	DefaultPage        = "home"
	DefaultEnvironment = "development"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	Host           string   `yaml:"host" mapstructure:"host"`
	Open           bool     `yaml:"open" mapstructure:"open"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	Environment    string   `yaml:"environment" mapstructure:"environment"`
}

type BrowserConfig struct {
	LoadDelay   time.Duration `yaml:"load_delay" mapstructure:"load_delay"`
	Breakpoint  int           `yaml:"breakpoint" mapstructure:"breakpoint"`
	DefaultPage string        `yaml:"default_page" mapstructure:"default_page"`
}

type ContentConfig struct {
	// Dir overrides embedded articles with markdown files from disk.
	Dir   string `yaml:"dir" mapstructure:"dir"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        DefaultPort,
			Host:        DefaultHost,
			Environment: DefaultEnvironment,
		},
		Browser: BrowserConfig{
			LoadDelay:   DefaultLoadDelay,
			Breakpoint:  DefaultBreakpoint,
			DefaultPage: DefaultPage,
		},
		Content: ContentConfig{
			Watch: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the global viper instance into a validated Config.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a validated Config.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}

	// Flags are bound under keys like "server.port"; Unmarshal misses values
	// that only exist as bound flags or env vars, so read them explicitly.
	if v.IsSet("server.port") {
		config.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.host") {
		config.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("server.open") {
		config.Server.Open = v.GetBool("server.open")
	}
	if v.IsSet("server.no-open") && v.GetBool("server.no-open") {
		config.Server.Open = false
	}
	if v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.environment") {
		config.Server.Environment = v.GetString("server.environment")
	}
	if v.IsSet("browser.load_delay") {
		config.Browser.LoadDelay = v.GetDuration("browser.load_delay")
	}
	if v.IsSet("browser.breakpoint") {
		config.Browser.Breakpoint = v.GetInt("browser.breakpoint")
	}
	if v.IsSet("browser.default_page") {
		config.Browser.DefaultPage = v.GetString("browser.default_page")
	}
	if v.IsSet("content.dir") {
		config.Content.Dir = v.GetString("content.dir")
	}
	if v.IsSet("content.watch") {
		config.Content.Watch = v.GetBool("content.watch")
	}
	if v.IsSet("log.level") {
		config.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		config.Log.Format = v.GetString("log.format")
	}

	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if config.Server.Environment == "" {
		config.Server.Environment = DefaultEnvironment
	}
	if config.Browser.DefaultPage == "" {
		config.Browser.DefaultPage = DefaultPage
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}
