package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/clipnote"
	"gopkg.in/yaml.v3"
)

// settingsFile is the YAML layout used by config show, import and export.
type settingsFile struct {
	Config      clipnote.Config       `yaml:"config"`
	Preferences *clipnote.Preferences `yaml:"preferences,omitempty"`
}

func loadSettings(deps *Dependencies) (*settingsFile, error) {
	cfg, err := deps.Settings.FindConfig(deps.Ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := deps.Settings.FindPreferences(deps.Ctx)
	if err != nil {
		return nil, err
	}
	return &settingsFile{Config: *cfg, Preferences: prefs}, nil
}

// maskKey keeps the last four characters of a secret.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// Run executes the config show command.
func (c *ConfigShowCmd) Run(deps *Dependencies) error {
	sf, err := loadSettings(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}
	if !c.Reveal {
		sf.Config.AIAPIKey = maskKey(sf.Config.AIAPIKey)
		sf.Config.MowenAPIKey = maskKey(sf.Config.MowenAPIKey)
	}
	sf.Config.AIProvider = sf.Config.Provider()

	enc := yaml.NewEncoder(deps.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(sf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := sf.Config.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", clipnote.ErrorMessage(err))
	}
	return nil
}

// Run executes the config set command.
func (c *ConfigSetCmd) Run(deps *Dependencies) error {
	if err := c.apply(deps); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Set %s\n", c.Key)
	return nil
}

func (c *ConfigSetCmd) apply(deps *Dependencies) error {
	key := strings.ReplaceAll(strings.ToLower(c.Key), "-", "_")
	value := strings.TrimSpace(c.Value)

	cfg, err := deps.Settings.FindConfig(deps.Ctx)
	if err != nil {
		return err
	}
	switch key {
	case "ai_provider":
		if value != clipnote.ProviderOpenAI && value != clipnote.ProviderGemini {
			return clipnote.Errorf(clipnote.EINVALID, "unknown AI provider %q; use %s or %s", value, clipnote.ProviderOpenAI, clipnote.ProviderGemini)
		}
		cfg.AIProvider = value
	case "ai_api_url":
		cfg.AIAPIURL = value
	case "ai_api_key":
		cfg.AIAPIKey = value
	case "ai_model":
		cfg.AIModel = value
	case "mowen_api_key":
		cfg.MowenAPIKey = value
	default:
		return c.applyPreference(deps, key, value)
	}
	return deps.Settings.SaveConfig(deps.Ctx, cfg)
}

func (c *ConfigSetCmd) applyPreference(deps *Dependencies, key, value string) error {
	prefs, err := deps.Settings.FindPreferences(deps.Ctx)
	if err != nil {
		return err
	}

	switch key {
	case "auto_publish", "full_text_mode", "generate_tags":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return clipnote.Errorf(clipnote.EINVALID, "%s must be true or false", key)
		}
		switch key {
		case "auto_publish":
			prefs.AutoPublish = b
		case "full_text_mode":
			prefs.FullTextMode = b
		default:
			prefs.GenerateTags = b
		}
	case "custom_prompt":
		prefs.CustomPrompt = c.Value
	case "surface":
		switch value {
		case clipnote.SurfacePopup, clipnote.SurfaceSidePanel, clipnote.SurfaceCLI:
		default:
			return clipnote.Errorf(clipnote.EINVALID, "unknown surface %q", value)
		}
		prefs.Surface = value
	default:
		return clipnote.Errorf(clipnote.EINVALID, "unknown setting %q", c.Key)
	}
	return deps.Settings.SavePreferences(deps.Ctx, prefs)
}

// Run executes the config import command.
func (c *ConfigImportCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot read %s\n", c.File)
		return err
	}

	var sf settingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		err = clipnote.Errorf(clipnote.EINVALID, "malformed settings file %s: %v", c.File, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	if err := deps.Settings.SaveConfig(deps.Ctx, &sf.Config); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}
	if sf.Preferences != nil {
		if err := deps.Settings.SavePreferences(deps.Ctx, sf.Preferences); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Imported settings from %s\n", c.File)
	if err := sf.Config.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", clipnote.ErrorMessage(err))
	}
	return nil
}

// Run executes the config export command. Keys are written unmasked.
func (c *ConfigExportCmd) Run(deps *Dependencies) error {
	sf, err := loadSettings(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	data, err := yaml.Marshal(sf)
	if err != nil {
		return err
	}

	if c.File == "" {
		_, err = deps.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(c.File, data, 0600); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot write %s\n", c.File)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported settings to %s\n", c.File)
	return nil
}
