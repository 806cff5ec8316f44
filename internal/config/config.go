package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/ema-chat/core/llms/chatstream"
	"github.com/spf13/viper"
)

const (
	appName   = "ema-chat"
	envPrefix = "EMA_CHAT"
)

type Config struct {
	Endpoint string            `mapstructure:"endpoint" json:"endpoint" jsonschema:"format=uri,description=Chat endpoint that answers with an event stream"`
	APIKey   string            `mapstructure:"api_key" json:"api_key,omitempty" jsonschema:"description=Bearer credential; ${VAR} and $VAR are read from the environment"`
	Timeout  time.Duration     `mapstructure:"timeout" json:"timeout,omitempty" jsonschema:"type=string,description=Per request timeout such as 90s; empty or 0 disables it"`
	Headers  map[string]string `mapstructure:"headers" json:"headers,omitempty" jsonschema:"description=Extra static headers sent with every request"`
}

// Load reads config.yaml from the user config directory or the working
// directory, or from configFile when set. A missing file is not an error.
// EMA_CHAT_* environment variables override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, appName))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("endpoint", "")
	v.SetDefault("api_key", "")
	v.SetDefault("timeout", "0s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.APIKey = expandEnv(strings.TrimSpace(cfg.APIKey))
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envPrefix + "_API_KEY")
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)

	return &cfg, nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// ApplyOverrides replaces file values with non-empty command line values.
func (c *Config) ApplyOverrides(endpoint string) {
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		c.Endpoint = endpoint
	}
}

// Validate reports the first setting that keeps a client from being built.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return chatstream.ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
		return fmt.Errorf("%w: %w", chatstream.ErrInvalidEndpoint, err)
	}
	if c.APIKey == "" {
		return chatstream.ErrMissingCredential
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// NewClient builds the chat client described by the config.
func (c *Config) NewClient(opts ...chatstream.ClientOption) (*chatstream.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(c.Headers) > 0 {
		opts = append([]chatstream.ClientOption{chatstream.WithHeaders(c.Headers)}, opts...)
	}
	return chatstream.NewClient(c.Endpoint, c.APIKey, opts...)
}

// Path returns the path where the config file should be located
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, "config.yaml"), nil
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Config{})
	schema.Title = appName + " configuration"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling schema: %w", err)
	}
	return out, nil
}
