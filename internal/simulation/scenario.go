// Package simulation replays scripted editor sessions against the eviction
// engine on a manual clock, so behavior can be inspected without an editor.
package simulation

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	settingstoml "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/settings/toml"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"gopkg.in/yaml.v3"
)

type Action string

const (
	ActionActivate     Action = "activate"
	ActionSave         Action = "save"
	ActionEdit         Action = "edit"
	ActionType         Action = "type"
	ActionClose        Action = "close"
	ActionOpen         Action = "open"
	ActionPin          Action = "pin"
	ActionUnpin        Action = "unpin"
	ActionReject       Action = "reject"
	ActionAccept       Action = "accept"
	ActionBuild        Action = "build"
	ActionCommand      Action = "command"
	ActionBackground   Action = "background"
	ActionForeground   Action = "foreground"
	ActionOpenSolution Action = "open-solution"
	ActionConfigure    Action = "configure"
	ActionEvaluate     Action = "evaluate"
)

var windowActions = map[Action]bool{
	ActionActivate: true,
	ActionSave:     true,
	ActionEdit:     true,
	ActionType:     true,
	ActionClose:    true,
	ActionOpen:     true,
	ActionPin:      true,
	ActionUnpin:    true,
	ActionReject:   true,
	ActionAccept:   true,
}

var globalActions = map[Action]bool{
	ActionBuild:        true,
	ActionCommand:      true,
	ActionBackground:   true,
	ActionForeground:   true,
	ActionOpenSolution: true,
	ActionConfigure:    true,
	ActionEvaluate:     true,
}

var ErrInvalidScenario = errors.New("invalid scenario")

type Scenario struct {
	Name        string        `yaml:"name"`
	Start       time.Time     `yaml:"start"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	Settings    *SettingsSpec `yaml:"settings"`
	Windows     []WindowSpec  `yaml:"windows"`
	Steps       []Step        `yaml:"steps"`
}

// SettingsSpec overrides individual defaults; omitted keys keep theirs.
type SettingsSpec struct {
	PurgeStaleTabsOnSave *bool `yaml:"purge_stale_tabs_on_save"`
	TabTimeoutMinutes    *int  `yaml:"tab_timeout_minutes"`
	TabCloseThreshold    *int  `yaml:"tab_close_threshold"`
	MaxOpenTabs          *int  `yaml:"max_open_tabs"`
}

type WindowSpec struct {
	ID      domain.WindowID `yaml:"id"`
	Path    string          `yaml:"path"`
	Pinned  bool            `yaml:"pinned"`
	Unsaved bool            `yaml:"unsaved"`
	// Document defaults to true; tool windows set it to false.
	Document *bool `yaml:"document"`
	Active   bool  `yaml:"active"`
	// Idle, when set, seeds an activity record that far before Start.
	Idle *time.Duration `yaml:"idle"`
}

type Step struct {
	After  time.Duration   `yaml:"after"`
	Action Action          `yaml:"action"`
	Window domain.WindowID `yaml:"window"`
	Value  string          `yaml:"value"`
}

func (s Step) String() string {
	parts := []string{string(s.Action)}
	if s.Window != "" {
		parts = append(parts, string(s.Window))
	}
	if s.Value != "" {
		parts = append(parts, s.Value)
	}
	return strings.Join(parts, " ")
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	scenario, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

func Parse(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	var errs []error

	if s.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle_delay must not be negative, got %s", s.SettleDelay))
	}
	if err := s.InitialSettings().Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := map[domain.WindowID]bool{}
	active := 0
	for i, w := range s.Windows {
		if w.ID == "" {
			errs = append(errs, fmt.Errorf("windows[%d]: id is required", i))
			continue
		}
		if seen[w.ID] {
			errs = append(errs, fmt.Errorf("windows[%d]: duplicate id %q", i, w.ID))
		}
		seen[w.ID] = true
		if w.Active {
			active++
		}
		if w.Idle != nil && *w.Idle < 0 {
			errs = append(errs, fmt.Errorf("windows[%d]: idle must not be negative", i))
		}
	}
	if active > 1 {
		errs = append(errs, fmt.Errorf("%d windows are marked active, at most one may be", active))
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			errs = append(errs, fmt.Errorf("steps[%d]: %w", i, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return nil
}

func (s Step) validate() error {
	if s.After < 0 {
		return fmt.Errorf("after must not be negative, got %s", s.After)
	}

	switch {
	case windowActions[s.Action]:
		if s.Window == "" {
			return fmt.Errorf("action %q needs a window", s.Action)
		}
	case globalActions[s.Action]:
		if s.Window != "" {
			return fmt.Errorf("action %q does not take a window", s.Action)
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}

	if s.Action == ActionConfigure {
		_, err := s.configure(domain.DefaultSettings())
		return err
	}
	return nil
}

// configure applies a "key=value" step to settings.
func (s Step) configure(settings domain.Settings) (domain.Settings, error) {
	key, value, ok := strings.Cut(s.Value, "=")
	if !ok {
		return settings, fmt.Errorf("configure expects key=value, got %q", s.Value)
	}
	if err := settingstoml.Apply(&settings, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// InitialSettings merges the scenario's overrides onto the defaults.
func (s *Scenario) InitialSettings() domain.Settings {
	return s.InitialSettingsFrom(domain.DefaultSettings())
}

// InitialSettingsFrom merges the scenario's overrides onto base.
func (s *Scenario) InitialSettingsFrom(base domain.Settings) domain.Settings {
	settings := base
	if s.Settings == nil {
		return settings
	}
	if s.Settings.PurgeStaleTabsOnSave != nil {
		settings.PurgeStaleTabsOnSave = *s.Settings.PurgeStaleTabsOnSave
	}
	if s.Settings.TabTimeoutMinutes != nil {
		settings.TabTimeoutMinutes = *s.Settings.TabTimeoutMinutes
	}
	if s.Settings.TabCloseThreshold != nil {
		settings.TabCloseThreshold = *s.Settings.TabCloseThreshold
	}
	if s.Settings.MaxOpenTabs != nil {
		settings.MaxOpenTabs = *s.Settings.MaxOpenTabs
	}
	return settings
}

func (w WindowSpec) window() domain.Window {
	document := true
	if w.Document != nil {
		document = *w.Document
	}

	return domain.Window{
		ID:                 w.ID,
		Path:               w.Path,
		Caption:            caption(w.ID, w.Path),
		IsPinned:           w.Pinned,
		HasUnsavedChanges:  w.Unsaved,
		HasBackingDocument: document,
	}
}

func caption(id domain.WindowID, path string) string {
	if path == "" {
		return string(id)
	}
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
