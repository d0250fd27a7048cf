package toml

import (
	"fmt"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Settings settingsSchema `toml:"settings"`
}

// settingsSchema uses pointers so keys missing from the file fall back to
// their defaults instead of zero values.
type settingsSchema struct {
	PurgeStaleTabsOnSave *bool `toml:"purge_stale_tabs_on_save,omitempty"`
	TabTimeoutMinutes    *int  `toml:"tab_timeout_minutes,omitempty"`
	TabCloseThreshold    *int  `toml:"tab_close_threshold,omitempty"`
	MaxOpenTabs          *int  `toml:"max_open_tabs,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported settings schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(settings domain.Settings) settingsSchema {
	return settingsSchema{
		PurgeStaleTabsOnSave: &settings.PurgeStaleTabsOnSave,
		TabTimeoutMinutes:    &settings.TabTimeoutMinutes,
		TabCloseThreshold:    &settings.TabCloseThreshold,
		MaxOpenTabs:          &settings.MaxOpenTabs,
	}
}

func fromSchema(schema settingsSchema) domain.Settings {
	settings := domain.DefaultSettings()
	if schema.PurgeStaleTabsOnSave != nil {
		settings.PurgeStaleTabsOnSave = *schema.PurgeStaleTabsOnSave
	}
	if schema.TabTimeoutMinutes != nil {
		settings.TabTimeoutMinutes = *schema.TabTimeoutMinutes
	}
	if schema.TabCloseThreshold != nil {
		settings.TabCloseThreshold = *schema.TabCloseThreshold
	}
	if schema.MaxOpenTabs != nil {
		settings.MaxOpenTabs = *schema.MaxOpenTabs
	}
	return settings
}
