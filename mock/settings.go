package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.SettingsService = (*SettingsService)(nil)

// SettingsService is a mock implementation of clipnote.SettingsService.
type SettingsService struct {
	FindConfigFn      func(ctx context.Context) (*clipnote.Config, error)
	SaveConfigFn      func(ctx context.Context, cfg *clipnote.Config) error
	FindPreferencesFn func(ctx context.Context) (*clipnote.Preferences, error)
	SavePreferencesFn func(ctx context.Context, prefs *clipnote.Preferences) error
	MigrateSettingsFn func(ctx context.Context, version string) (bool, error)
}

func (s *SettingsService) FindConfig(ctx context.Context) (*clipnote.Config, error) {
	return s.FindConfigFn(ctx)
}

func (s *SettingsService) SaveConfig(ctx context.Context, cfg *clipnote.Config) error {
	return s.SaveConfigFn(ctx, cfg)
}

func (s *SettingsService) FindPreferences(ctx context.Context) (*clipnote.Preferences, error) {
	return s.FindPreferencesFn(ctx)
}

func (s *SettingsService) SavePreferences(ctx context.Context, prefs *clipnote.Preferences) error {
	return s.SavePreferencesFn(ctx, prefs)
}

func (s *SettingsService) MigrateSettings(ctx context.Context, version string) (bool, error) {
	return s.MigrateSettingsFn(ctx, version)
}
