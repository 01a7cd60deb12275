package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIModelAssignmentUnmarshalObject(t *testing.T) {
	var a AIModelAssignment
	require.NoError(t, json.Unmarshal([]byte(`{"provider_id":"p1","model":"gpt-4.1-mini"}`), &a))
	assert.Equal(t, "p1", a.ProviderID)
	assert.Equal(t, "gpt-4.1-mini", a.Model)
}

func TestAIModelAssignmentUnmarshalLegacyString(t *testing.T) {
	var a AIModelAssignment
	require.NoError(t, json.Unmarshal([]byte(`"p1/claude-haiku-4-5-20251001"`), &a))
	assert.Equal(t, "p1", a.ProviderID)
	assert.Equal(t, "claude-haiku-4-5-20251001", a.Model)

	var bare AIModelAssignment
	require.NoError(t, json.Unmarshal([]byte(`" gpt-4.1-mini "`), &bare))
	assert.Empty(t, bare.ProviderID)
	assert.Equal(t, "gpt-4.1-mini", bare.Model)
}

func TestAIModelAssignmentUnmarshalInvalid(t *testing.T) {
	var a AIModelAssignment
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &a))
}

func TestDefaultFullConfig(t *testing.T) {
	cfg := DefaultFullConfig()
	assert.Equal(t, "Prism Core", cfg.Workspace.Name)
	assert.Equal(t, "us-east-1", cfg.S3Options.Region)
	assert.True(t, cfg.Generation.EnableCaptions)
	assert.True(t, cfg.Generation.EnableSummary)
	assert.NotNil(t, cfg.AI.Providers)
}
