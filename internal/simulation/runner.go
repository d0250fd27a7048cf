package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/clock/manual"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/dispatch/loop"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/adapters/host/memory"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/application"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
)

// DefaultStart is the simulated wall clock used when a scenario has no start.
var DefaultStart = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

type Result struct {
	Reports []domain.EvictionReport
	// Closed lists every window the engine closed, in order.
	Closed []domain.WindowID
	Status application.Status
	Ended  time.Time
}

type Runner struct {
	scenario *Scenario
	logger   *slog.Logger
	// OnStep, when set, is called before each step runs.
	OnStep func(index int, step Step)
	// BaseSettings replaces the defaults the scenario's overrides apply to.
	BaseSettings *domain.Settings
}

func NewRunner(scenario *Scenario, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Runner{scenario: scenario, logger: logger}
}

type session struct {
	clock *manual.Clock
	host  *memory.Host
	loop  *loop.Loop
	orch  *application.Orchestrator

	mu      sync.Mutex
	reports []domain.EvictionReport
}

// Run replays every step, then lets pending passes fire before it reports the
// final state.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	s, err := r.open()
	if err != nil {
		return Result{}, err
	}
	defer s.close()

	for i, step := range r.scenario.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if r.OnStep != nil {
			r.OnStep(i, step)
		}

		s.advanceTo(s.clock.Now().Add(step.After))
		if err := s.apply(ctx, step); err != nil {
			return Result{}, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		s.orch.Wait()
	}
	s.drain()

	status, err := s.orch.Status(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read final status: %w", err)
	}

	return Result{
		Reports: s.collected(),
		Closed:  s.host.ClosedByEngine(),
		Status:  status,
		Ended:   s.clock.Now(),
	}, nil
}

// Plan loads the initial windows and reports what a pass would close at the
// start time. Steps are ignored.
func (r *Runner) Plan(ctx context.Context) (domain.EvictionPlan, application.Status, error) {
	s, err := r.open()
	if err != nil {
		return domain.EvictionPlan{}, application.Status{}, err
	}
	defer s.close()

	plan, err := s.orch.Preview(ctx)
	if err != nil {
		return domain.EvictionPlan{}, application.Status{}, fmt.Errorf("preview: %w", err)
	}
	status, err := s.orch.Status(ctx)
	if err != nil {
		return domain.EvictionPlan{}, application.Status{}, fmt.Errorf("read status: %w", err)
	}
	return plan, status, nil
}

func (r *Runner) open() (*session, error) {
	if r.scenario == nil {
		return nil, errors.New("scenario is nil")
	}

	start := r.scenario.Start
	if start.IsZero() {
		start = DefaultStart
	}

	s := &session{clock: manual.New(start)}
	settings := r.scenario.InitialSettings()
	if r.BaseSettings != nil {
		settings = r.scenario.InitialSettingsFrom(*r.BaseSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s.host = memory.NewHost(s.clock, settings)

	var active domain.WindowID
	var records []domain.ActivityRecord
	for _, spec := range r.scenario.Windows {
		if err := s.host.Open(spec.window()); err != nil {
			return nil, err
		}
		if spec.Active {
			active = spec.ID
		}
		if spec.Idle != nil {
			records = append(records, domain.ActivityRecord{Window: spec.ID, LastSeenAt: start.Add(-*spec.Idle)})
		}
	}
	if active != "" {
		if err := s.host.Activate(active); err != nil {
			return nil, err
		}
	}

	s.loop = loop.Start()
	orch, err := application.NewOrchestrator(application.OrchestratorConfig{
		Host:        s.host,
		Settings:    s.host,
		Dispatcher:  s.loop,
		Clock:       s.clock,
		Logger:      r.logger,
		SettleDelay: r.scenario.SettleDelay,
		OnReport:    s.record,
	})
	if err != nil {
		s.loop.Stop()
		return nil, err
	}
	s.orch = orch
	s.orch.Restore(records...)
	s.orch.Attach(s.host)

	return s, nil
}

func (s *session) close() {
	s.orch.Close()
	s.loop.Stop()
}

func (s *session) record(report domain.EvictionReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
}

func (s *session) collected() []domain.EvictionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.EvictionReport(nil), s.reports...)
}

// advanceTo moves the clock one timer at a time so each released pass
// completes before the clock moves again.
func (s *session) advanceTo(target time.Time) {
	for {
		next, ok := s.clock.NextDeadline()
		if !ok || next.After(target) {
			break
		}
		s.clock.AdvanceTo(next)
		s.orch.Wait()
	}
	s.clock.AdvanceTo(target)
}

func (s *session) drain() {
	for {
		next, ok := s.clock.NextDeadline()
		if !ok {
			return
		}
		s.advanceTo(next)
	}
}

func (s *session) apply(ctx context.Context, step Step) error {
	switch step.Action {
	case ActionActivate:
		return s.host.Activate(step.Window)
	case ActionSave:
		return s.host.Save(step.Window)
	case ActionEdit:
		return s.host.Edit(step.Window)
	case ActionType:
		return s.host.Type(step.Window)
	case ActionClose:
		return s.host.CloseByUser(step.Window)
	case ActionOpen:
		spec := WindowSpec{ID: step.Window, Path: step.Value}
		if err := s.host.Open(spec.window()); err != nil {
			return err
		}
		return s.host.Activate(step.Window)
	case ActionPin:
		return s.host.SetPinned(step.Window, true)
	case ActionUnpin:
		return s.host.SetPinned(step.Window, false)
	case ActionReject:
		var reason error
		if step.Value != "" {
			reason = fmt.Errorf("%w: %s", domain.ErrCloseRejected, step.Value)
		}
		s.host.RejectClose(step.Window, reason)
	case ActionAccept:
		s.host.AcceptClose(step.Window)
	case ActionBuild:
		s.host.BeginBuild()
	case ActionCommand:
		s.host.InvokeCommand()
	case ActionBackground:
		s.host.SetForeground(false)
	case ActionForeground:
		s.host.SetForeground(true)
	case ActionOpenSolution:
		s.host.OpenSolution()
	case ActionConfigure:
		current, err := s.host.Settings(ctx)
		if err != nil {
			return err
		}
		updated, err := step.configure(current)
		if err != nil {
			return err
		}
		s.host.Configure(updated)
	case ActionEvaluate:
		_, err := s.orch.Evaluate(ctx, application.ReasonManual)
		return err
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}
