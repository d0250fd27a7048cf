package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// replayProgress is sent once per scenario step, before the step runs.
type replayProgress struct {
	step    int
	total   int
	elapsed time.Duration
	action  string
}

type replayFinishedMsg struct {
	err error
}

type replayModel struct {
	spinner  spinner.Model
	scenario string
	muted    lipgloss.Style
	progress replayProgress
	started  bool
	run      tea.Cmd
	err      error
	finished bool
}

func newReplayModel(scenario string, run tea.Cmd) replayModel {
	return replayModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		scenario: scenario,
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		run:      run,
	}
}

func (m replayModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case replayProgress:
		m.progress = msg
		m.started = true
		return m, nil
	case replayFinishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View shows the step being replayed and how far the scenario clock has
// moved, e.g. "⠋ stale  3/12  +42m  activate a1".
func (m replayModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.scenario)
	if !m.started {
		b.WriteString(m.muted.Render("  loading windows"))
		return b.String()
	}

	fmt.Fprintf(&b, "  %d/%d  ", m.progress.step, m.progress.total)
	b.WriteString(m.muted.Render("+" + formatElapsed(m.progress.elapsed)))
	b.WriteString("  ")
	b.WriteString(m.progress.action)
	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	text := d.Round(time.Second).String()
	if strings.HasSuffix(text, "m0s") {
		text = strings.TrimSuffix(text, "0s")
	}
	if strings.HasSuffix(text, "h0m") {
		text = strings.TrimSuffix(text, "0m")
	}
	return text
}

// runReplaySpinner draws replay progress on output until replay returns.
func runReplaySpinner(ctx context.Context, output io.Writer, scenario string, replay func(ctx context.Context, progress func(replayProgress)) error) error {
	var p *tea.Program
	run := func() tea.Msg {
		return replayFinishedMsg{err: replay(ctx, func(update replayProgress) {
			p.Send(update)
		})}
	}

	p = tea.NewProgram(
		newReplayModel(scenario, run),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	model, ok := final.(replayModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}
	return model.err
}
