package pipeline

import (
	"testing"

	appcfg "github.com/content-prism/prism-core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProvider(t *testing.T) {
	cfg := appcfg.AIConfig{Providers: []appcfg.AIProvider{
		{ID: "disabled", Type: "OpenAI", DefaultModel: "gpt-4.1", Enabled: false},
		{ID: "primary", Type: "OpenAI", DefaultModel: "gpt-4.1-mini", Enabled: true},
		{ID: "claude", Type: "Anthropic", DefaultModel: "claude-haiku-4-5-20251001", Enabled: true},
	}}

	// No assignment picks the first enabled provider.
	provider := SelectProvider(cfg, nil)
	require.NotNil(t, provider)
	assert.Equal(t, "primary", provider.ID)

	// Assignment by provider id.
	provider = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "claude"})
	require.NotNil(t, provider)
	assert.Equal(t, "claude", provider.ID)
	assert.Equal(t, "claude-haiku-4-5-20251001", provider.DefaultModel)

	// Model override replaces the default on a copy.
	provider = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "claude", Model: "claude-sonnet-4-5"})
	require.NotNil(t, provider)
	assert.Equal(t, "claude-sonnet-4-5", provider.DefaultModel)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Providers[2].DefaultModel)

	// Unknown provider id falls back to the first enabled provider.
	provider = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "missing", Model: "other"})
	require.NotNil(t, provider)
	assert.Equal(t, "primary", provider.ID)
	assert.Equal(t, "other", provider.DefaultModel)

	// Disabled providers never match, even by id.
	provider = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "disabled"})
	require.NotNil(t, provider)
	assert.Equal(t, "primary", provider.ID)
}

func TestSelectProviderNoneEnabled(t *testing.T) {
	cfg := appcfg.AIConfig{Providers: []appcfg.AIProvider{
		{ID: "off", Type: "OpenAI", Enabled: false},
	}}
	assert.Nil(t, SelectProvider(cfg, nil))
	assert.Nil(t, SelectProvider(appcfg.AIConfig{}, nil))
}
