package sqlite

import (
	"context"

	"github.com/fwojciec/clipnote"
)

// Compile-time interface verification.
var _ clipnote.SettingsService = (*SettingsService)(nil)

// SettingsService implements clipnote.SettingsService.
// Configuration lives in the sync area, preferences and the settings
// version marker in the local area.
type SettingsService struct {
	db *DB
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(db *DB) *SettingsService {
	return &SettingsService{db: db}
}

// FindConfig returns the stored configuration, or the zero Config.
func (s *SettingsService) FindConfig(ctx context.Context) (*clipnote.Config, error) {
	var cfg clipnote.Config
	if _, err := getValue(ctx, s.db, clipnote.AreaSync, clipnote.KeyConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig stores the configuration. Incomplete configurations are
// accepted; they are rejected when a task starts.
func (s *SettingsService) SaveConfig(ctx context.Context, cfg *clipnote.Config) error {
	return setValue(ctx, s.db, clipnote.AreaSync, clipnote.KeyConfig, cfg)
}

// FindPreferences returns stored preferences, or the defaults.
func (s *SettingsService) FindPreferences(ctx context.Context) (*clipnote.Preferences, error) {
	prefs := clipnote.DefaultPreferences()
	if _, err := getValue(ctx, s.db, clipnote.AreaLocal, clipnote.KeyPreferences, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences stores preferences.
func (s *SettingsService) SavePreferences(ctx context.Context, prefs *clipnote.Preferences) error {
	return setValue(ctx, s.db, clipnote.AreaLocal, clipnote.KeyPreferences, prefs)
}

// MigrateSettings resets AutoPublish when the stored version differs from version.
func (s *SettingsService) MigrateSettings(ctx context.Context, version string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var stored string
	if _, err := getValue(ctx, tx, clipnote.AreaLocal, clipnote.KeySettingsVersion, &stored); err != nil {
		return false, err
	}
	if stored == version {
		return false, nil
	}

	prefs := clipnote.DefaultPreferences()
	if _, err := getValue(ctx, tx, clipnote.AreaLocal, clipnote.KeyPreferences, &prefs); err != nil {
		return false, err
	}
	prefs.AutoPublish = clipnote.DefaultPreferences().AutoPublish
	if err := setValue(ctx, tx, clipnote.AreaLocal, clipnote.KeyPreferences, &prefs); err != nil {
		return false, err
	}
	if err := setValue(ctx, tx, clipnote.AreaLocal, clipnote.KeySettingsVersion, version); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
