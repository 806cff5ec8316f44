package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupTelemetryWritesSpans(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := setupTelemetry(&out, true, true)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "sample span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, out.String(), "sample span")
	assert.NoError(t, shutdown(context.Background()), "shutdown is idempotent")
}

func TestSetupTelemetryDisabled(t *testing.T) {
	shutdown, err := setupTelemetry(&bytes.Buffer{}, false, false)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
