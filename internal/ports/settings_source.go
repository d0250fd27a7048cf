package ports

import (
	"context"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

// SettingsSource returns the current options. Callers read it once per
// evaluation and never cache the result across passes.
type SettingsSource interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

type StaticSettings domain.Settings

func (s StaticSettings) Settings(context.Context) (domain.Settings, error) {
	return domain.Settings(s), nil
}
