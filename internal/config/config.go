// Package config loads toolkit configuration from defaults, an optional YAML
// file and CONTENTGRAPH_* environment variables, in increasing precedence.
// Command-line flags bound to the same viper instance take precedence over all.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	graphql "github.com/llehouerou/go-contentgraph-client"
	"github.com/llehouerou/go-contentgraph-client/internal/logger"
)

const EnvPrefix = "CONTENTGRAPH"

// Keys of the viper instance returned by NewViper.
const (
	KeyEndpoint  = "endpoint"
	KeyAuthMode  = "auth.mode"
	KeySingleKey = "auth.single_key"
	KeyAppKey    = "auth.app_key"
	KeySecret    = "auth.secret"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyMockAddr  = "mock.addr"
)

// envNames lists the environment variables read for each key, first match wins.
var envNames = map[string][]string{
	KeyEndpoint:  {"ENDPOINT"},
	KeyAuthMode:  {"AUTH_MODE"},
	KeySingleKey: {"SINGLE_KEY", "AUTH_SINGLE_KEY"},
	KeyAppKey:    {"APP_KEY", "AUTH_APP_KEY"},
	KeySecret:    {"SECRET", "AUTH_SECRET"},
	KeyLogLevel:  {"LOG_LEVEL"},
	KeyLogFormat: {"LOG_FORMAT"},
	KeyMockAddr:  {"MOCK_ADDR"},
}

var defaults = map[string]any{
	KeyEndpoint:  "",
	KeyAuthMode:  string(graphql.AuthNone),
	KeySingleKey: "",
	KeyAppKey:    "",
	KeySecret:    "",
	KeyLogLevel:  "info",
	KeyLogFormat: "console",
	KeyMockAddr:  "127.0.0.1:8089",
}

type Config struct {
	Endpoint string     `mapstructure:"endpoint"`
	Auth     AuthConfig `mapstructure:"auth"`
	Log      LogConfig  `mapstructure:"log"`
	Mock     MockConfig `mapstructure:"mock"`
}

type AuthConfig struct {
	Mode      string `mapstructure:"mode"`
	SingleKey string `mapstructure:"single_key"`
	AppKey    string `mapstructure:"app_key"`
	Secret    string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MockConfig struct {
	Addr string `mapstructure:"addr"`
}

// NewViper returns a viper instance with the defaults and environment
// bindings of every key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, names := range envNames {
		args := []string{key}
		for _, name := range names {
			args = append(args, EnvPrefix+"_"+name)
		}
		// BindEnv only fails without a key.
		_ = v.BindEnv(args...)
	}
	return v
}

// Load reads file into v when file is not empty and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("problem reading config file %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("problem decoding config: %w", err)
	}
	return &cfg, nil
}

// Error reports one invalid configuration field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the client configuration. It returns every problem found,
// joined; each one is an *Error.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, &Error{Field: KeyEndpoint, Message: "must not be empty"})
	} else if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &Error{Field: KeyEndpoint, Message: fmt.Sprintf("%q is not an absolute URL", c.Endpoint)})
	}
	errs = append(errs, c.authErrors()...)
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, &Error{Field: KeyLogFormat, Message: fmt.Sprintf("unknown format %q", c.Log.Format)})
	}
	return errors.Join(errs...)
}

// ValidateAuth checks only the credentials, for the mock server which has
// no endpoint to reach.
func (c *Config) ValidateAuth() error {
	return errors.Join(c.authErrors()...)
}

func (c *Config) authErrors() []error {
	mode, err := graphql.ParseAuthMode(c.Auth.Mode)
	switch {
	case err != nil:
		return []error{&Error{Field: KeyAuthMode, Message: err.Error()}}
	case mode == graphql.AuthSingle && c.Auth.SingleKey == "":
		return []error{&Error{Field: KeySingleKey, Message: "required when auth mode is single"}}
	case mode == graphql.AuthHMAC:
		var errs []error
		if c.Auth.AppKey == "" {
			errs = append(errs, &Error{Field: KeyAppKey, Message: "required when auth mode is hmac"})
		}
		if c.Auth.Secret == "" {
			errs = append(errs, &Error{Field: KeySecret, Message: "required when auth mode is hmac"})
		}
		return errs
	}
	return nil
}

// Settings implements graphql.SettingsProvider. An unknown auth mode falls
// back to none; Validate reports it.
func (c *Config) Settings() graphql.Settings {
	mode, err := graphql.ParseAuthMode(c.Auth.Mode)
	if err != nil {
		mode = graphql.AuthNone
	}
	return graphql.Settings{
		Endpoint:  c.Endpoint,
		AuthMode:  mode,
		SingleKey: c.Auth.SingleKey,
		AppKey:    c.Auth.AppKey,
		Secret:    c.Auth.Secret,
	}
}

// Logger returns the logger configuration described by c.
func (c *Config) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	if c.Log.Level != "" {
		cfg.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		cfg.Format = strings.ToLower(c.Log.Format)
	}
	return cfg
}
