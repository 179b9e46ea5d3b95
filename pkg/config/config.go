// Package config loads client settings from a yaml file with environment
// overrides (SHELLCHAT_* variables win over the file).
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Endpoint is the ws:// or wss:// URL of the assistant websocket API.
	Endpoint string `yaml:"endpoint"`
	// TokenEndpoint, if set, vends bearer tokens for the upgrade.
	TokenEndpoint string `yaml:"token_endpoint"`
	UserID        string `yaml:"user_id"`
	CacheName     string `yaml:"cache_name"`
	ModelID       string `yaml:"model_id"`

	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	SendRetryDelay time.Duration `yaml:"send_retry_delay"`

	// TranscriptPath enables local transcript recording when non-empty.
	TranscriptPath string `yaml:"transcript_path"`
	LogLevel       string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		ReconnectDelay: 5 * time.Second,
		SendRetryDelay: 1 * time.Second,
		CacheName:      "interactive-labs",
		LogLevel:       "info",
	}
}

// Load reads path (optional) over the defaults, then applies environment
// overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString(&c.Endpoint, "SHELLCHAT_ENDPOINT")
	setString(&c.TokenEndpoint, "SHELLCHAT_TOKEN_ENDPOINT")
	setString(&c.UserID, "SHELLCHAT_USER_ID")
	setString(&c.CacheName, "SHELLCHAT_CACHE_NAME")
	setString(&c.ModelID, "SHELLCHAT_MODEL_ID")
	setString(&c.TranscriptPath, "SHELLCHAT_TRANSCRIPT_PATH")
	setString(&c.LogLevel, "SHELLCHAT_LOG_LEVEL")

	if v, ok := os.LookupEnv("SHELLCHAT_RECONNECT_DELAY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.ReconnectDelay = d
		}
	}
	if v, ok := os.LookupEnv("SHELLCHAT_SEND_RETRY_DELAY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.SendRetryDelay = d
		}
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("config: endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.Wrap(err, "config: parse endpoint")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.Errorf("config: endpoint scheme %q is not ws or wss", u.Scheme)
	}
	if c.TokenEndpoint != "" && strings.TrimSpace(c.UserID) == "" {
		return errors.New("config: user_id is required when token_endpoint is set")
	}
	if c.ReconnectDelay <= 0 || c.SendRetryDelay <= 0 {
		return errors.New("config: delays must be positive")
	}
	return nil
}
