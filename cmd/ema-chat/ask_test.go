package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/llms"
	"github.com/koscakluka/ema-chat/internal/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCmdWithStderr(t, args...)
	return out, err
}

func runCmdWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_key: test-key\n"), 0o600))

	cmd, opts := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := run(cmd, opts)
	return out.String(), stderr.String(), err
}

func TestAskStreamsReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n"))
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"lo"}}]}` + "\n"))
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	out, err := runCmd(t, "ask", "--endpoint", server.URL, "say", "hello")

	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)
}

func TestAskReportsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	out, err := runCmd(t, "ask", "--endpoint", server.URL, "hello")

	var exitErr exitcode.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitcode.Error, exitErr.Code)
	assert.Contains(t, exitErr.Message, llms.ErrorKindRateLimited.UserMessage())
	assert.Empty(t, out)
}

func TestAskTraceFlushedOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, stderr, err := runCmdWithStderr(t, "--trace", "ask", "--endpoint", server.URL, "hello")

	var exitErr exitcode.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitcode.Error, exitErr.Code)
	assert.Contains(t, stderr, `"SpanContext"`)
}

func TestAskRequiresEndpoint(t *testing.T) {
	t.Setenv("EMA_CHAT_ENDPOINT", "")

	_, err := runCmd(t, "ask", "hello")

	assert.ErrorContains(t, err, "invalid configuration")
}

func TestAskResult(t *testing.T) {
	tests := []struct {
		name    string
		outcome orchestration.Outcome
		code    int
	}{
		{"completed", orchestration.Outcome{Kind: orchestration.OutcomeCompleted}, exitcode.Success},
		{"discarded", orchestration.Outcome{Kind: orchestration.OutcomeDiscarded}, exitcode.Success},
		{"aborted", orchestration.Outcome{Kind: orchestration.OutcomeAborted}, exitcode.Cancelled},
		{"rejected", orchestration.Outcome{Kind: orchestration.OutcomeRejected}, exitcode.Error},
		{"failed", orchestration.Outcome{Kind: orchestration.OutcomeFailed, Err: llms.ClassifyResponse(500, nil)}, exitcode.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := askResult(tt.outcome)
			if tt.code == exitcode.Success {
				assert.NoError(t, err)
				return
			}
			var exitErr exitcode.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.code, exitErr.Code)
		})
	}
}

func TestConfigSchemaCommand(t *testing.T) {
	out, err := runCmd(t, "config", "schema")

	require.NoError(t, err)
	assert.Contains(t, out, `"endpoint"`)
	assert.Contains(t, out, `"api_key"`)
}
