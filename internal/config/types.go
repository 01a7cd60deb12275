package config

import (
	"encoding/json"
	"strings"
)

// FullConfig is the workspace configuration stored in the database
// (options table, key="configs"). Editable at runtime through the configs API.
type FullConfig struct {
	Workspace    WorkspaceConfig   `json:"workspace"`
	URL          URLConfig         `json:"url"`
	S3Options    S3Options         `json:"s3_options"`
	BarkOptions  BarkOptions       `json:"bark_options"`
	AuthSecurity AuthSecurity      `json:"auth_security"`
	AI           AIConfig          `json:"ai"`
	Generation   GenerationOptions `json:"generation_options"`
}

// WorkspaceConfig identifies the content workspace (institution).
type WorkspaceConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type URLConfig struct {
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

// S3Options configures the S3-compatible object store for uploaded assets
// (DigitalOcean Spaces in the reference deployment).
type S3Options struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	CustomDomain    string `json:"custom_domain"`
	PathStyleAccess bool   `json:"path_style_access"`
}

type BarkOptions struct {
	Enable              bool   `json:"enable"`
	Key                 string `json:"key"`
	ServerURL           string `json:"server_url"`
	EnableThrottleGuard bool   `json:"enable_throttle_guard"`
}

type AuthSecurity struct {
	DisablePasswordLogin bool `json:"disable_password_login"`
}

// GenerationOptions holds workspace-level defaults for the generation pipeline.
type GenerationOptions struct {
	EnableCaptions bool `json:"enable_captions"`
	EnableSummary  bool `json:"enable_summary"`
}

// AIConfig lists the configured model providers and which provider/model pair
// serves each pipeline stage. A nil assignment falls back to the first
// enabled provider and its default model.
type AIConfig struct {
	Providers       []AIProvider       `json:"providers"`
	ExtractionModel *AIModelAssignment `json:"extraction_model,omitempty"`
	GenerationModel *AIModelAssignment `json:"generation_model,omitempty"`
	CaptionModel    *AIModelAssignment `json:"caption_model,omitempty"`
	SummaryModel    *AIModelAssignment `json:"summary_model,omitempty"`
}

type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

// UnmarshalJSON accepts both the object form and the legacy plain-string form
// ("model" or "provider_id/model") written by earlier releases.
func (a *AIModelAssignment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if idx := strings.Index(str, "/"); idx > 0 {
			a.ProviderID = str[:idx]
			a.Model = str[idx+1:]
		} else {
			a.Model = str
		}
		return nil
	}

	type alias AIModelAssignment
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = AIModelAssignment(obj)
	return nil
}

// DefaultFullConfig returns the configuration used before the workspace is set up.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		Workspace: WorkspaceConfig{
			Name: "Prism Core",
		},
		S3Options: S3Options{
			Region: "us-east-1",
		},
		Generation: GenerationOptions{
			EnableCaptions: true,
			EnableSummary:  true,
		},
		AI: AIConfig{
			Providers: []AIProvider{},
		},
	}
}
