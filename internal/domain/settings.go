package domain

import (
	"fmt"
	"time"
)

const (
	DefaultTabTimeoutMinutes = 24 * 60
	DefaultTabCloseThreshold = 10
)

type Settings struct {
	PurgeStaleTabsOnSave bool
	TabTimeoutMinutes    int
	TabCloseThreshold    int
	// MaxOpenTabs caps unpinned windows; zero disables the cap.
	MaxOpenTabs int
}

func DefaultSettings() Settings {
	return Settings{
		PurgeStaleTabsOnSave: true,
		TabTimeoutMinutes:    DefaultTabTimeoutMinutes,
		TabCloseThreshold:    DefaultTabCloseThreshold,
		MaxOpenTabs:          0,
	}
}

func (s Settings) Validate() error {
	if s.TabTimeoutMinutes <= 0 {
		return fmt.Errorf("%w: tab timeout must be positive, got %d", ErrInvalidSettings, s.TabTimeoutMinutes)
	}
	if s.TabCloseThreshold < 0 {
		return fmt.Errorf("%w: tab close threshold must not be negative, got %d", ErrInvalidSettings, s.TabCloseThreshold)
	}
	if s.MaxOpenTabs < 0 {
		return fmt.Errorf("%w: max open tabs must not be negative, got %d", ErrInvalidSettings, s.MaxOpenTabs)
	}

	return nil
}

func (s Settings) TabTimeout() time.Duration {
	return time.Duration(s.TabTimeoutMinutes) * time.Minute
}

func (s Settings) CapEnabled() bool {
	return s.MaxOpenTabs > 0
}
