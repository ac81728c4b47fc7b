// Package config loads fittrack's settings with viper.
//
// Precedence, lowest first:
//
//	defaults → fittrack.yaml → FITTRACK_* environment → command-line flags
//
// Nested keys map to environment variables with '.' replaced by '_', so
// github.client_id is FITTRACK_GITHUB_CLIENT_ID.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/logging"
)

const (
	EnvPrefix      = "FITTRACK"
	configFileName = "fittrack"
)

// Keys shared with the cobra flag bindings.
const (
	KeyPort             = "port"
	KeyDBPath           = "db_path"
	KeySessionSecret    = "session_secret"
	KeySessionTTL       = "session_ttl"
	KeySecureCookies    = "secure_cookies"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyPBKDF2Iterations = "pbkdf2_iterations"
	KeyLoginRate        = "login_rate_per_minute"
	KeyGitHubID         = "github.client_id"
	KeyGitHubSecret     = "github.client_secret"
	KeyGitHubCallback   = "github.callback_url"
)

type GitHub struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

// Config is the resolved configuration of one fittrack process.
type Config struct {
	Port               int           `mapstructure:"port"`
	DBPath             string        `mapstructure:"db_path"`
	SessionSecret      string        `mapstructure:"session_secret"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	PBKDF2Iterations   int           `mapstructure:"pbkdf2_iterations"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`
	GitHub             GitHub        `mapstructure:"github"`

	// GeneratedSecret is set when no session_secret was configured and a
	// random one was generated; sessions then end with the process.
	GeneratedSecret bool `mapstructure:"-"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment binding set
// up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyDBPath, "data/fittrack.db")
	v.SetDefault(KeySessionSecret, "")
	v.SetDefault(KeySessionTTL, 7*24*time.Hour)
	v.SetDefault(KeySecureCookies, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyPBKDF2Iterations, auth.MinIterations)
	v.SetDefault(KeyLoginRate, 10)
	v.SetDefault(KeyGitHubID, "")
	v.SetDefault(KeyGitHubSecret, "")
	v.SetDefault(KeyGitHubCallback, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or fittrack.yaml from the working directory when
// configFile is empty, and resolves the configuration. A missing default
// file is not an error; a missing explicit file is.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// No SetConfigType: with it viper would also try a file named
		// plain "fittrack", which is usually the binary itself.
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("config: db_path must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive, got %s", c.SessionTTL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}

	switch {
	case c.SessionSecret == "":
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.SessionSecret = secret
		c.GeneratedSecret = true
	case len(c.SessionSecret) < 16:
		return errors.New("config: session_secret must be at least 16 characters")
	}

	if c.GitHub.CallbackURL == "" {
		c.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Port)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GitHubProvider converts the GitHub settings for auth.NewGitHubProvider.
func (c *Config) GitHubProvider() auth.GitHubConfig {
	return auth.GitHubConfig{
		ClientID:     c.GitHub.ClientID,
		ClientSecret: c.GitHub.ClientSecret,
		CallbackURL:  c.GitHub.CallbackURL,
	}
}
