package cmd

import (
	"fmt"
	"io"
	"log/slog"

	statusadapter "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/render/status"
	settingstoml "github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/settings/toml"
	"github.com/spf13/viper"
)

type app struct {
	opts           *rootOptions
	settings       *settingstoml.Repository
	statusRenderer func(statusadapter.Input, statusadapter.RenderOptions) (string, error)
}

func wireApp(opts *rootOptions) (*app, error) {
	repo, err := settingstoml.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire settings repository: %w", err)
	}

	return &app{
		opts:           opts,
		settings:       repo,
		statusRenderer: statusadapter.Render,
	}, nil
}

// logger writes engine logs as text to w. Without --verbose only warnings and
// errors get through.
func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.opts.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
