package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationMockMode(t *testing.T) {
	a, err := NewApplication(context.Background(), DefaultConfig(), true)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &MockGateway{}, a.Gateway)
	assert.NotNil(t, a.Controller)
	assert.Nil(t, a.Local)
	assert.Equal(t, PhaseIdle, a.Controller.State().Phase)
}

func TestNewApplicationLocalBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "local"
	a, err := NewApplication(context.Background(), cfg, false)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Local)
	assert.IsType(t, &ExecShell{}, a.Shell)
}

func TestNewApplicationGeminiNeedsKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = ""
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewApplication(context.Background(), cfg, false)
	assert.Error(t, err)
}

func TestNewApplicationUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "bedrock"
	_, err := NewApplication(context.Background(), cfg, false)
	assert.Error(t, err)
}
