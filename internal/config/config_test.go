package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koscakluka/ema-chat/core/llms/chatstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://chat.example.com/v1/stream
api_key: secret
timeout: 90s
headers:
  X-Client: ema-chat
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com/v1/stream", cfg.Endpoint)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "ema-chat", cfg.Headers["x-client"], "viper lowercases map keys")
	assert.NoError(t, cfg.Validate())
}

func TestLoadExpandsCredentialFromEnvironment(t *testing.T) {
	t.Setenv("MY_CHAT_TOKEN", "from-env")
	for _, value := range []string{"${MY_CHAT_TOKEN}", "$MY_CHAT_TOKEN"} {
		cfg, err := Load(writeConfig(t, "endpoint: https://chat.example.com\napi_key: "+value+"\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.APIKey, value)
	}
}

func TestLoadFallsBackToPrefixedEnvironment(t *testing.T) {
	t.Setenv("EMA_CHAT_API_KEY", "fallback")
	t.Setenv("EMA_CHAT_ENDPOINT", "https://env.example.com")

	cfg, err := Load(writeConfig(t, "timeout: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.APIKey)
	assert.Equal(t, "https://env.example.com", cfg.Endpoint)
	assert.Zero(t, cfg.Timeout)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	_, err := Load(writeConfig(t, "endpoint: [unterminated\n"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{Endpoint: "https://file.example.com"}

	cfg.ApplyOverrides("  ")
	assert.Equal(t, "https://file.example.com", cfg.Endpoint)

	cfg.ApplyOverrides("https://flag.example.com")
	assert.Equal(t, "https://flag.example.com", cfg.Endpoint)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing endpoint", Config{APIKey: "k"}, chatstream.ErrMissingEndpoint},
		{"invalid endpoint", Config{Endpoint: "not a url", APIKey: "k"}, chatstream.ErrInvalidEndpoint},
		{"missing credential", Config{Endpoint: "https://chat.example.com"}, chatstream.ErrMissingCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)

			_, err := tt.cfg.NewClient()
			assert.ErrorIs(t, err, tt.want)
		})
	}

	negative := Config{Endpoint: "https://chat.example.com", APIKey: "k", Timeout: -time.Second}
	assert.Error(t, negative.Validate())
}

func TestSchemaDescribesFields(t *testing.T) {
	out, err := Schema()
	require.NoError(t, err)

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(out, &schema))

	assert.Equal(t, "ema-chat configuration", schema.Title)
	for _, field := range []string{"endpoint", "api_key", "timeout", "headers"} {
		assert.Contains(t, schema.Properties, field)
	}
}
