package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/domain"
	"github.com/samgubernick/TidyTabs-VisualStudio/internal/ports"
	"github.com/sourcegraph/conc/panics"
)

const DefaultSettleDelay = 100 * time.Millisecond

// Pass reasons, used in reports and logs.
const (
	ReasonActivation = "activation"
	ReasonSave       = "save"
	ReasonBuild      = "build"
	ReasonCommand    = "command"
	ReasonManual     = "manual"
)

type OrchestratorConfig struct {
	Host       ports.WindowHost
	Settings   ports.SettingsSource
	Dispatcher ports.Dispatcher
	Clock      ports.Clock
	Logger     *slog.Logger
	// SettleDelay defers scheduled passes so bookkeeping events that follow a
	// trigger land first. Zero means DefaultSettleDelay.
	SettleDelay time.Duration
	// OnReport receives the report of every completed pass.
	OnReport func(domain.EvictionReport)
}

// Orchestrator turns host events into evaluation passes. Passes run one at a
// time on the host interaction thread; event handlers only touch the activity
// store and arm timers, so they never block the thread that delivers them.
type Orchestrator struct {
	host        ports.WindowHost
	settings    ports.SettingsSource
	dispatcher  ports.Dispatcher
	clock       ports.Clock
	logger      *slog.Logger
	settleDelay time.Duration
	onReport    func(domain.EvictionReport)

	store       *ActivityStore
	compensator *IdleCompensator
	policy      EvictionPolicy
	guard       *CloseGuard

	passMu sync.Mutex

	mu             sync.Mutex
	lastActionTime time.Time
	closed         bool
	pending        map[*pendingPass]struct{}
	inflight       sync.WaitGroup
}

// pendingPass is a scheduled pass whose settle delay has not elapsed yet.
type pendingPass struct {
	timer ports.Timer
}

func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Host == nil {
		return nil, errors.New("window host is nil")
	}
	if cfg.Settings == nil {
		return nil, errors.New("settings source is nil")
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = ports.DirectDispatcher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	o := &Orchestrator{
		host:        cfg.Host,
		settings:    cfg.Settings,
		dispatcher:  cfg.Dispatcher,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		settleDelay: cfg.SettleDelay,
		onReport:    cfg.OnReport,
		store:       NewActivityStore(),
		pending:     map[*pendingPass]struct{}{},
	}
	o.compensator = NewIdleCompensator(o.store, &o.passMu)
	o.guard = NewCloseGuard(cfg.Host, o.store, cfg.Logger)

	return o, nil
}

// Attach subscribes the orchestrator to source and returns the unsubscribe
// function.
func (o *Orchestrator) Attach(source ports.EventSource) func() {
	return source.Subscribe(o.Handle)
}

// Handle routes a host event. It never panics and never blocks on a pass.
func (o *Orchestrator) Handle(event domain.Event) {
	switch event.Kind {
	case domain.EventWindowActivated:
		o.OnWindowActivated(event.Window, event.Previous)
	case domain.EventDocumentSaved:
		o.OnDocumentSaved(event.Window)
	case domain.EventDocumentClosing:
		o.OnDocumentClosing(event.Window)
	case domain.EventSolutionOpened:
		o.OnSolutionOpened()
	case domain.EventBuildBegin:
		o.OnBuildBegin()
	case domain.EventApplicationActivated:
		o.OnApplicationActivated()
	case domain.EventApplicationDeactivated:
		o.OnApplicationDeactivated()
	case domain.EventTextActivity:
		o.OnTextActivity(event.Window)
	case domain.EventCommandInvoked:
		o.OnCommandInvoked()
	default:
		o.logger.Warn("ignoring unknown event", "event", event.Kind)
	}
}

func (o *Orchestrator) OnWindowActivated(gained, lost domain.WindowID) {
	o.safely(domain.EventWindowActivated, func() {
		now := o.markAction()
		o.store.Touch(gained, now)
		o.store.Touch(lost, now)
		o.scheduleEvaluation(ReasonActivation, nil)
	})
}

func (o *Orchestrator) OnDocumentSaved(id domain.WindowID) {
	o.safely(domain.EventDocumentSaved, func() {
		now := o.markAction()
		o.store.Touch(id, now)
		o.scheduleEvaluation(ReasonSave, o.purgeOnSave)
	})
}

// purgeOnSave runs on the pass goroutine once the settle delay has elapsed,
// never on the host callback.
func (o *Orchestrator) purgeOnSave(ctx context.Context) bool {
	settings, err := o.settings.Settings(ctx)
	if err != nil {
		o.logger.Warn("read settings on save", "error", err)
		return false
	}
	return settings.PurgeStaleTabsOnSave
}

// OnDocumentClosing drops the record right away; it is bookkeeping only.
func (o *Orchestrator) OnDocumentClosing(id domain.WindowID) {
	o.safely(domain.EventDocumentClosing, func() {
		o.store.Remove(id)
	})
}

func (o *Orchestrator) OnSolutionOpened() {
	o.safely(domain.EventSolutionOpened, func() {
		o.goAsync("seed", func() {
			if _, err := o.Seed(context.Background()); err != nil {
				o.logger.Warn("seed activity on solution open", "error", err)
			}
		})
	})
}

func (o *Orchestrator) OnBuildBegin() {
	o.safely(domain.EventBuildBegin, func() {
		o.markAction()
		o.scheduleEvaluation(ReasonBuild, nil)
	})
}

func (o *Orchestrator) OnCommandInvoked() {
	o.safely(domain.EventCommandInvoked, func() {
		o.markAction()
		o.scheduleEvaluation(ReasonCommand, nil)
	})
}

func (o *Orchestrator) OnApplicationActivated() {
	o.safely(domain.EventApplicationActivated, func() {
		if shift := o.compensator.Activated(o.clock.Now()); shift > 0 {
			o.logger.Debug("compensated background time", "shift", shift)
		}
	})
}

func (o *Orchestrator) OnApplicationDeactivated() {
	o.safely(domain.EventApplicationDeactivated, func() {
		o.compensator.Deactivated(o.clock.Now())
	})
}

func (o *Orchestrator) OnTextActivity(id domain.WindowID) {
	o.safely(domain.EventTextActivity, func() {
		now := o.markAction()
		o.store.Touch(id, now)
	})
}

// Seed records every currently open window that is not tracked yet and
// returns how many records were created. It runs on the interaction thread.
func (o *Orchestrator) Seed(ctx context.Context) (int, error) {
	seeded := 0
	err := o.dispatcher.Do(ctx, func(ctx context.Context) error {
		snapshot, err := o.host.Windows(ctx)
		if err != nil {
			return fmt.Errorf("enumerate windows: %w", err)
		}
		now := o.clock.Now()
		for _, window := range snapshot.Windows {
			if o.store.Seed(window.ID, now) {
				seeded++
			}
		}
		return nil
	})
	return seeded, err
}

// Restore tracks records carried over from an earlier session. Windows that
// are already tracked keep their current record.
func (o *Orchestrator) Restore(records ...domain.ActivityRecord) int {
	restored := 0
	for _, record := range records {
		if o.store.Seed(record.Window, record.LastSeenAt) {
			restored++
		}
	}
	return restored
}

// Evaluate runs one pass and waits for it. It must not be called from the
// host interaction thread.
func (o *Orchestrator) Evaluate(ctx context.Context, reason string) (domain.EvictionReport, error) {
	var report domain.EvictionReport
	err := o.dispatcher.Do(ctx, func(ctx context.Context) error {
		var passErr error
		report, passErr = o.runPass(ctx, reason)
		return passErr
	})
	if err != nil {
		return report, fmt.Errorf("evaluate %s: %w", reason, err)
	}

	if o.onReport != nil {
		o.onReport(report)
	}
	return report, nil
}

// Preview returns what a pass would close right now without closing anything.
func (o *Orchestrator) Preview(ctx context.Context) (domain.EvictionPlan, error) {
	var plan domain.EvictionPlan
	err := o.dispatcher.Do(ctx, func(ctx context.Context) error {
		o.passMu.Lock()
		defer o.passMu.Unlock()

		settings, err := o.readSettings(ctx)
		if err != nil {
			return err
		}
		snapshot, err := o.host.Windows(ctx)
		if err != nil {
			return fmt.Errorf("enumerate windows: %w", err)
		}

		records := o.store.Snapshot()
		excess, candidates := o.policy.StaleCandidates(snapshot, records, settings, o.clock.Now())
		plan.Stale = walkCandidates(ctx, excess, candidates, o.dryAttempt(snapshot))

		for _, id := range plan.Stale {
			snapshot = snapshot.Without(id)
		}
		toClose, candidates := o.policy.CapCandidates(snapshot, records, settings)
		plan.Cap = walkCandidates(ctx, toClose, candidates, o.dryAttempt(snapshot))
		return nil
	})
	return plan, err
}

// Wait blocks until every pass whose settle delay has already elapsed has
// finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close stops pending timers, refuses new passes and waits for running ones.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	timers := make([]ports.Timer, 0, len(o.pending))
	for p := range o.pending {
		if p.timer != nil {
			timers = append(timers, p.timer)
		}
	}
	clear(o.pending)
	o.mu.Unlock()

	for _, timer := range timers {
		timer.Stop()
	}
	o.inflight.Wait()
}

func (o *Orchestrator) LastActionTime() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.lastActionTime
}

// Activity returns the tracked records, oldest activity first.
func (o *Orchestrator) Activity() []domain.ActivityRecord {
	return o.store.Snapshot()
}

func (o *Orchestrator) runPass(ctx context.Context, reason string) (domain.EvictionReport, error) {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	startedAt := o.clock.Now()
	report := domain.EvictionReport{
		PassID:    uuid.NewString(),
		Reason:    reason,
		StartedAt: startedAt,
	}

	settings, err := o.readSettings(ctx)
	if err != nil {
		return report, err
	}

	snapshot, err := o.host.Windows(ctx)
	if err != nil {
		return report, fmt.Errorf("enumerate windows: %w", err)
	}

	excess, candidates := o.policy.StaleCandidates(snapshot, o.store.Snapshot(), settings, o.clock.Now())
	report.StaleExcess = excess
	report.StaleClosed = walkCandidates(ctx, excess, candidates, o.attemptClose(&report, snapshot))

	if settings.CapEnabled() && len(report.StaleClosed) > 0 {
		snapshot, err = o.host.Windows(ctx)
		if err != nil {
			return report, fmt.Errorf("enumerate windows after stale reclamation: %w", err)
		}
	}

	toClose, candidates := o.policy.CapCandidates(snapshot, o.store.Snapshot(), settings)
	report.CapExcess = toClose
	report.CapClosed = walkCandidates(ctx, toClose, candidates, o.attemptClose(&report, snapshot))

	report.Pruned = o.pruneMissing(snapshot)
	report.Duration = o.clock.Now().Sub(startedAt)

	o.logReport(report)
	return report, nil
}

func (o *Orchestrator) readSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := o.settings.Settings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (o *Orchestrator) attemptClose(report *domain.EvictionReport, snapshot domain.WindowSnapshot) func(context.Context, domain.Window) bool {
	return func(ctx context.Context, window domain.Window) bool {
		if err := o.guard.Admissible(window, snapshot); err != nil {
			report.Skipped = appendUnique(report.Skipped, window.ID)
			return false
		}

		closed, err := o.guard.Close(ctx, window, snapshot)
		if err != nil {
			o.logger.Warn("close window failed",
				"pass_id", report.PassID,
				"window", window.ID,
				"error", err,
			)
			report.Failures = append(report.Failures, domain.CloseFailure{Window: window.ID, Err: err})
			return false
		}
		return closed
	}
}

func (o *Orchestrator) dryAttempt(snapshot domain.WindowSnapshot) func(context.Context, domain.Window) bool {
	return func(_ context.Context, window domain.Window) bool {
		return o.guard.Admissible(window, snapshot) == nil
	}
}

// pruneMissing drops records of windows the host no longer reports. Records
// touched after the snapshot was captured are kept: their window may simply
// have opened after enumeration.
func (o *Orchestrator) pruneMissing(snapshot domain.WindowSnapshot) int {
	if snapshot.CapturedAt.IsZero() {
		return 0
	}

	return o.store.Prune(func(record domain.ActivityRecord) bool {
		return snapshot.Contains(record.Window) || !record.LastSeenAt.Before(snapshot.CapturedAt)
	})
}

func (o *Orchestrator) logReport(report domain.EvictionReport) {
	level := slog.LevelDebug
	if len(report.StaleClosed)+len(report.CapClosed)+len(report.Failures) > 0 {
		level = slog.LevelInfo
	}

	o.logger.Log(context.Background(), level, "eviction pass complete",
		"pass_id", report.PassID,
		"reason", report.Reason,
		"stale_excess", report.StaleExcess,
		"stale_closed", len(report.StaleClosed),
		"cap_excess", report.CapExcess,
		"cap_closed", len(report.CapClosed),
		"skipped", len(report.Skipped),
		"failures", len(report.Failures),
		"pruned", report.Pruned,
	)
}

func (o *Orchestrator) markAction() time.Time {
	now := o.clock.Now()

	o.mu.Lock()
	o.lastActionTime = now
	o.mu.Unlock()

	return now
}

// scheduleEvaluation arms a timer for a pass after the settle delay. Each
// trigger gets its own pass; nothing is coalesced. When gate is set the pass
// only runs if gate returns true once the delay has elapsed.
func (o *Orchestrator) scheduleEvaluation(reason string, gate func(context.Context) bool) {
	p := &pendingPass{}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.pending[p] = struct{}{}
	o.mu.Unlock()

	timer := o.clock.AfterFunc(o.settleDelay, func() {
		o.mu.Lock()
		delete(o.pending, p)
		o.mu.Unlock()

		o.goAsync(reason, func() {
			ctx := context.Background()
			if gate != nil && !gate(ctx) {
				return
			}
			if _, err := o.Evaluate(ctx, reason); err != nil {
				o.logger.Warn("scheduled eviction pass failed", "reason", reason, "error", err)
			}
		})
	})

	o.mu.Lock()
	_, waiting := o.pending[p]
	if waiting {
		p.timer = timer
	}
	closed := o.closed
	o.mu.Unlock()

	if closed {
		timer.Stop()
	}
}

// goAsync runs fn on its own goroutine, tracked by Wait. Panics are logged
// and swallowed.
func (o *Orchestrator) goAsync(name string, fn func()) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.inflight.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.inflight.Done()

		var catcher panics.Catcher
		catcher.Try(fn)
		if recovered := catcher.Recovered(); recovered != nil {
			o.logger.Error("background task panicked", "task", name, "panic", recovered.String())
		}
	}()
}

func (o *Orchestrator) safely(kind domain.EventKind, fn func()) {
	var catcher panics.Catcher
	catcher.Try(fn)
	if recovered := catcher.Recovered(); recovered != nil {
		o.logger.Error("event handler panicked", "event", kind, "panic", recovered.String())
	}
}

func appendUnique(ids []domain.WindowID, id domain.WindowID) []domain.WindowID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
