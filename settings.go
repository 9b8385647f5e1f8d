package graphql

import (
	"fmt"
	"strings"
)

// AuthMode selects how requests are authenticated.
type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthSingle AuthMode = "single"
	AuthHMAC   AuthMode = "hmac"
)

// ParseAuthMode parses a mode name case-insensitively. An empty name is AuthNone.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AuthNone, nil
	case "single", "singlekey", "single-key", "epi-single":
		return AuthSingle, nil
	case "hmac", "epi-hmac":
		return AuthHMAC, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AuthMode) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Settings is the connection configuration of a Client.
type Settings struct {
	Endpoint  string
	AuthMode  AuthMode
	SingleKey string
	AppKey    string
	Secret    string
}

// SettingsProvider supplies the current settings. The Client asks for them on
// every call, so a provider backed by editable state takes effect immediately.
type SettingsProvider interface {
	Settings() Settings
}

// StaticSettings is a SettingsProvider returning fixed settings.
type StaticSettings Settings

func (s StaticSettings) Settings() Settings {
	return Settings(s)
}
