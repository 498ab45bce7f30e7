// Package config manages the box-client configuration file and the
// environment overrides layered on top of it. The file holds application
// credentials and the OAuth token; it is written with owner-only
// permissions and guarded by a lock file so that concurrent CLI processes
// refreshing the token do not corrupt it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
	"github.com/tonimelisma/box-client/pkg/box"
)

const (
	appDirName     = "box-client"
	configFileName = "config.json"
	// EnvConfigPath overrides the location of the configuration file.
	EnvConfigPath = "BOX_CONFIG_PATH"
	envPrefix     = "BOX"
)

// AuthMode selects how the CLI obtains access tokens.
type AuthMode string

const (
	AuthOAuth AuthMode = "oauth"
	AuthCCG   AuthMode = "ccg"
	AuthJWT   AuthMode = "jwt"
	AuthToken AuthMode = "token"
)

// Valid reports whether m is a known mode.
func (m AuthMode) Valid() bool {
	switch m {
	case AuthOAuth, AuthCCG, AuthJWT, AuthToken:
		return true
	}
	return false
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// DefaultHTTPConfig returns the transport defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: box.DefaultTimeout}
}

// Configuration is the on-disk configuration.
type Configuration struct {
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"client_secret,omitempty"`
	RedirectURL  string     `json:"redirect_url,omitempty"`
	AuthMode     AuthMode   `json:"auth_mode,omitempty"`
	SubjectType  string     `json:"subject_type,omitempty"`
	SubjectID    string     `json:"subject_id,omitempty"`
	JWTKeyFile   string     `json:"jwt_key_file,omitempty"`
	JWTKeyID     string     `json:"jwt_key_id,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	BaseURL      string     `json:"base_url,omitempty"`
	UploadURL    string     `json:"upload_url,omitempty"`
	LogFormat    string     `json:"log_format,omitempty"`
	Debug        bool       `json:"debug"`
	HTTP         HTTPConfig `json:"http"`
	Token        box.Token  `json:"token"`

	mu sync.RWMutex
}

// Settings are the effective values after environment overrides.
type Settings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthMode     AuthMode
	SubjectType  string
	SubjectID    string
	JWTKeyFile   string
	JWTKeyID     string
	AccessToken  string
	BaseURL      string
	UploadURL    string
	LogFormat    string
	Debug        bool
	HTTP         HTTPConfig
}

// GetConfigDir returns the directory holding the configuration file.
func GetConfigDir() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return filepath.Dir(p), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, appDirName), nil
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// NewDefaultConfig returns a configuration with defaults filled in.
func NewDefaultConfig() *Configuration {
	return &Configuration{
		AuthMode: AuthOAuth,
		HTTP:     DefaultHTTPConfig(),
	}
}

// Load reads the configuration file. A missing file yields an error
// matching os.ErrNotExist.
func Load() (*Configuration, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = DefaultHTTPConfig().Timeout
	}
	return cfg, nil
}

// LoadOrCreate loads the configuration, falling back to the defaults when
// no file exists yet.
func LoadOrCreate() (*Configuration, error) {
	cfg, err := Load()
	if errors.Is(err, os.ErrNotExist) {
		return NewDefaultConfig(), nil
	}
	return cfg, err
}

// Save writes the configuration file.
func (c *Configuration) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), box.PermSecureDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire config lock, another instance may be running")
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, data, box.PermSecureFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// UpdateToken stores a refreshed token and saves the file.
func (c *Configuration) UpdateToken(tok box.Token) error {
	c.mu.Lock()
	c.Token = tok
	c.mu.Unlock()
	return c.Save()
}

// ClearCredentials drops every stored token.
func (c *Configuration) ClearCredentials() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = box.Token{}
	c.AccessToken = ""
}

// Settings resolves the effective settings. File values act as defaults and
// BOX_* environment variables take precedence, e.g. BOX_CLIENT_ID or
// BOX_HTTP_TIMEOUT=45s.
func (c *Configuration) Settings() (Settings, error) {
	c.mu.RLock()
	defaults := map[string]any{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_url":  c.RedirectURL,
		"auth_mode":     string(c.AuthMode),
		"subject_type":  c.SubjectType,
		"subject_id":    c.SubjectID,
		"jwt_key_file":  c.JWTKeyFile,
		"jwt_key_id":    c.JWTKeyID,
		"access_token":  c.AccessToken,
		"base_url":      c.BaseURL,
		"upload_url":    c.UploadURL,
		"log_format":    c.LogFormat,
		"debug":         c.Debug,
		"http_timeout":  c.HTTP.Timeout,
	}
	c.mu.RUnlock()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return Settings{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	s := Settings{
		ClientID:     v.GetString("client_id"),
		ClientSecret: v.GetString("client_secret"),
		RedirectURL:  v.GetString("redirect_url"),
		AuthMode:     AuthMode(v.GetString("auth_mode")),
		SubjectType:  v.GetString("subject_type"),
		SubjectID:    v.GetString("subject_id"),
		JWTKeyFile:   v.GetString("jwt_key_file"),
		JWTKeyID:     v.GetString("jwt_key_id"),
		AccessToken:  v.GetString("access_token"),
		BaseURL:      v.GetString("base_url"),
		UploadURL:    v.GetString("upload_url"),
		LogFormat:    strings.ToLower(v.GetString("log_format")),
		Debug:        v.GetBool("debug"),
		HTTP:         HTTPConfig{Timeout: v.GetDuration("http_timeout")},
	}

	if s.AuthMode == "" {
		s.AuthMode = AuthOAuth
		if s.AccessToken != "" {
			s.AuthMode = AuthToken
		}
	}
	if !s.AuthMode.Valid() {
		return Settings{}, fmt.Errorf("unknown auth mode %q (want oauth, ccg, jwt or token)", s.AuthMode)
	}
	switch s.LogFormat {
	case "":
		s.LogFormat = "text"
	case "text", "json":
	default:
		return Settings{}, fmt.Errorf("unknown log format %q (want text or json)", s.LogFormat)
	}
	if s.HTTP.Timeout <= 0 {
		s.HTTP.Timeout = DefaultHTTPConfig().Timeout
	}
	return s, nil
}
