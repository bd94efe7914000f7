package clipnote

import (
	"context"
	"net/url"
	"strings"
)

// Storage areas, mirroring the browser extension's storage split.
const (
	AreaSync  = "sync"
	AreaLocal = "local"
)

// Storage keys.
const (
	KeyConfig          = "config"
	KeyPreferences     = "preferences"
	KeySettingsVersion = "settingsVersion"
)

// SettingsVersion is bumped whenever stored preference defaults change.
const SettingsVersion = "2"

// MinKeyLength is the shortest API key accepted by configuration validation.
const MinKeyLength = 10

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Surface kinds.
const (
	SurfacePopup     = "popup"
	SurfaceSidePanel = "sidepanel"
	SurfaceCLI       = "cli"
)

// Config holds the API configuration needed to clip a page.
type Config struct {
	AIProvider  string `json:"aiProvider,omitempty" yaml:"ai_provider,omitempty"`
	AIAPIURL    string `json:"aiApiUrl" yaml:"ai_api_url"`
	AIAPIKey    string `json:"aiApiKey" yaml:"ai_api_key"`
	AIModel     string `json:"aiModel" yaml:"ai_model"`
	MowenAPIKey string `json:"mowenApiKey" yaml:"mowen_api_key"`
}

// Provider returns the configured AI provider, defaulting to OpenAI-compatible.
func (c *Config) Provider() string {
	if c.AIProvider == "" {
		return ProviderOpenAI
	}
	return c.AIProvider
}

// Validate checks that the configuration is complete before any network call.
func (c *Config) Validate() error {
	switch c.Provider() {
	case ProviderOpenAI:
		if strings.TrimSpace(c.AIAPIURL) == "" {
			return Errorf(EINVALID, "AI API URL is not configured")
		}
		u, err := url.Parse(c.AIAPIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Errorf(EINVALID, "AI API URL %q is malformed; it must start with http:// or https://", c.AIAPIURL)
		}
	case ProviderGemini:
	default:
		return Errorf(EINVALID, "unknown AI provider %q", c.AIProvider)
	}
	if strings.TrimSpace(c.AIAPIKey) == "" {
		return Errorf(EINVALID, "AI API key is not configured")
	}
	if len(strings.TrimSpace(c.AIAPIKey)) < MinKeyLength {
		return Errorf(EINVALID, "AI API key is too short")
	}
	// Gemini falls back to its default model.
	if c.Provider() != ProviderGemini && strings.TrimSpace(c.AIModel) == "" {
		return Errorf(EINVALID, "AI model is not configured")
	}
	if strings.TrimSpace(c.MowenAPIKey) == "" {
		return Errorf(EINVALID, "Mowen API key is not configured")
	}
	if len(strings.TrimSpace(c.MowenAPIKey)) < MinKeyLength {
		return Errorf(EINVALID, "Mowen API key is too short")
	}
	return nil
}

// Preferences holds user interface preferences.
type Preferences struct {
	AutoPublish  bool   `json:"autoPublish" yaml:"auto_publish"`
	FullTextMode bool   `json:"fullTextMode" yaml:"full_text_mode"`
	GenerateTags bool   `json:"generateTags" yaml:"generate_tags"`
	CustomPrompt string `json:"customPrompt,omitempty" yaml:"custom_prompt,omitempty"`
	Surface      string `json:"surface,omitempty" yaml:"surface,omitempty"`
}

// DefaultPreferences returns the preferences used before the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{
		AutoPublish:  false,
		GenerateTags: true,
		Surface:      SurfacePopup,
	}
}

// SettingsService represents a service for managing user configuration.
type SettingsService interface {
	// FindConfig returns the stored API configuration.
	// A missing configuration is returned as the zero Config.
	FindConfig(ctx context.Context) (*Config, error)

	// SaveConfig stores the API configuration.
	SaveConfig(ctx context.Context, cfg *Config) error

	// FindPreferences returns stored preferences, or defaults if none are stored.
	FindPreferences(ctx context.Context) (*Preferences, error)

	// SavePreferences stores preferences.
	SavePreferences(ctx context.Context, prefs *Preferences) error

	// MigrateSettings compares the stored settings version with version.
	// On mismatch it resets AutoPublish to its default and records version.
	// Reports whether a migration happened.
	MigrateSettings(ctx context.Context, version string) (bool, error)
}
