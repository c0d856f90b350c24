// Package services provides service orchestration for the TUI and the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/typesteps/typesteps/internal/config"
	"github.com/typesteps/typesteps/internal/db"
	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/metrics"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services/analytics"
	"github.com/typesteps/typesteps/internal/services/backup"
	"github.com/typesteps/typesteps/internal/services/capture"
	"github.com/typesteps/typesteps/internal/services/category"
	"github.com/typesteps/typesteps/internal/services/ingest"
	"github.com/typesteps/typesteps/internal/services/milestones"
	"github.com/typesteps/typesteps/internal/services/tracking"
	"github.com/typesteps/typesteps/internal/services/wakatime"
)

// keystrokeBuffer is the capacity of the live capture queue.
const keystrokeBuffer = 1024

type (
	// StatsChangedEvent is emitted after the counters change.
	StatsChangedEvent struct {
		Day   string
		Today int
	}

	// MilestoneReachedEvent is emitted when a goal milestone was notified.
	MilestoneReachedEvent struct {
		Reached milestones.Reached
	}

	// WakaTimeUpdatedEvent is emitted after a successful WakaTime fetch.
	WakaTimeUpdatedEvent struct {
		Status models.WakaTimeStatus
	}

	// SettingsChangedEvent is emitted when the user settings change.
	SettingsChangedEvent struct {
		Settings models.Settings
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (StatsChangedEvent) isServiceEvent()     {}
func (MilestoneReachedEvent) isServiceEvent() {}
func (WakaTimeUpdatedEvent) isServiceEvent()  {}
func (SettingsChangedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()            {}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n milestones.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithWakaTimeFetcher replaces the WakaTime API client.
func WithWakaTimeFetcher(f wakatime.Fetcher) Option {
	return func(m *Manager) {
		if f != nil {
			m.fetcher = f
		}
	}
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu            sync.RWMutex
	cfg           *config.Config
	database      *db.DB
	store         *tracking.Store
	classifier    *category.Classifier
	evaluator     *milestones.Evaluator
	ingester      *ingest.Ingester
	codec         *backup.Codec
	engine        *analytics.Engine
	notifier      milestones.Notifier
	fetcher       wakatime.Fetcher
	tailer        *capture.SpoolTailer
	wakatime      *wakatime.Service
	metricsServer *metrics.Server
	keystrokes    chan models.KeystrokeEvent
	eventChan     chan ServiceEvent
	stopChan      chan struct{}
	cancelIngest  context.CancelFunc
	ingestDone    chan struct{}
	subscribers   []chan<- ServiceEvent
	now           func() time.Time
	started       bool
	closed        bool
}

// Open loads the stored state and wires the domain services without starting
// any background work. CLI commands use it directly.
func Open(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:        cfg,
		notifier:   milestones.BeeepNotifier{},
		keystrokes: make(chan models.KeystrokeEvent, keystrokeBuffer),
		eventChan:  make(chan ServiceEvent, 100),
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fetcher == nil {
		m.fetcher = wakatime.NewClient(cfg.WakaTimeBaseURL, wakatime.WithLocation(cfg.Location), wakatime.WithClock(m.now))
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	state, err := m.database.LoadState()
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to load tracking data: %w", err)
	}

	m.store = tracking.New(state, m.database, tracking.WithLocation(cfg.Location), tracking.WithClock(m.now))
	m.seedSettings()

	m.classifier, err = category.NewClassifier(category.DefaultCacheSize)
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	m.evaluator = milestones.NewEvaluator(m.store, m.notifier, milestones.DefaultFractions)
	m.ingester = ingest.New(m.store, m.evaluator, m.classifier)
	m.codec = backup.New(m.store)
	m.engine = analytics.New(m.store, analytics.WithClock(m.now), analytics.WithClassifier(m.classifier))

	metrics.TodayKeystrokes.Set(float64(m.store.Today()))

	return m, nil
}

// NewManager opens the store and starts live capture, WakaTime polling and
// the metrics endpoint.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m, err := Open(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Start(); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

// seedSettings applies configured defaults on first run.
func (m *Manager) seedSettings() {
	if m.cfg.DailyGoal > 0 {
		if _, ok, err := m.database.GetSetting(db.SettingDailyGoal); err == nil && !ok {
			if err := m.store.SetDailyGoal(m.cfg.DailyGoal); err != nil {
				logger.Error("failed to seed daily goal", "error", err)
			}
		}
	}
	if m.cfg.WakaTimeAPIKey != "" && m.store.Settings().WakaTimeAPIKey == "" {
		if err := m.store.SetAPIKey(m.cfg.WakaTimeAPIKey); err != nil {
			logger.Error("failed to seed wakatime key", "error", err)
		}
	}
}

// Start launches the ingest worker and the background services.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelIngest = cancel
	m.ingestDone = make(chan struct{})
	go func() {
		defer close(m.ingestDone)
		_ = m.ingester.Run(ctx, m.keystrokes, m.handleOutcome)
	}()

	if m.cfg.SpoolPath != "" {
		tailer, err := capture.NewSpoolTailer(m.cfg.SpoolPath, m.database, m.keystrokes)
		if err != nil {
			return fmt.Errorf("failed to follow capture spool: %w", err)
		}
		m.tailer = tailer
	}

	m.wakatime = wakatime.NewService(m.fetcher, m.store, m.cfg.WakaTimeRefreshInterval)

	if m.cfg.MetricsAddr != "" {
		m.metricsServer = metrics.NewServer(m.cfg.MetricsAddr)
		if err := m.metricsServer.Start(); err != nil {
			logger.Error("failed to start metrics server", "error", err)
			m.metricsServer = nil
		}
	}

	var tailerEvents <-chan capture.Event
	if m.tailer != nil {
		tailerEvents = m.tailer.Events()
	}
	go m.routeEvents(tailerEvents, m.wakatime.Events())

	return nil
}

// routeEvents routes events from individual services to subscribers until
// the manager stops. A closed source is dropped from the select.
func (m *Manager) routeEvents(tailerEvents <-chan capture.Event, wakaEvents <-chan wakatime.Event) {
	for {
		select {
		case event, ok := <-tailerEvents:
			if !ok {
				tailerEvents = nil
				continue
			}
			m.handleTailerEvent(event)

		case event, ok := <-wakaEvents:
			if !ok {
				wakaEvents = nil
				continue
			}
			m.handleWakaTimeEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleTailerEvent(event capture.Event) {
	if event.Type == capture.EventError {
		m.broadcast(ErrorEvent{Service: "capture", Error: event.Error})
	}
}

func (m *Manager) handleWakaTimeEvent(event wakatime.Event) {
	switch event.Type {
	case wakatime.EventUpdated:
		m.broadcast(WakaTimeUpdatedEvent{Status: event.Status})
	case wakatime.EventError:
		m.broadcast(ErrorEvent{Service: "wakatime", Error: event.Error})
	}
}

// handleOutcome broadcasts the result of one ingested keystroke.
func (m *Manager) handleOutcome(outcome ingest.Outcome, err error) {
	if err != nil {
		logger.Error("failed to ingest keystroke", "error", err)
		m.broadcast(ErrorEvent{Service: "ingest", Error: err})
	}
	if outcome.Day != "" {
		m.broadcast(StatsChangedEvent{Day: outcome.Day, Today: m.store.Today()})
	}
	for _, r := range outcome.Reached {
		m.broadcast(MilestoneReachedEvent{Reached: r})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}
	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Keystrokes returns the live capture queue consumed by the ingest worker.
func (m *Manager) Keystrokes() chan<- models.KeystrokeEvent {
	return m.keystrokes
}

// Ingest counts one keystroke synchronously.
func (m *Manager) Ingest(event models.KeystrokeEvent) (ingest.Outcome, error) {
	outcome, err := m.ingester.Ingest(event)
	m.handleOutcome(outcome, err)
	return outcome, err
}

// IngestReport summarizes a stream ingestion.
type IngestReport struct {
	Ingested int
	Failed   int
}

// IngestStream counts every keystroke record read from r in order.
func (m *Manager) IngestStream(ctx context.Context, r io.Reader) (IngestReport, error) {
	events := make(chan models.KeystrokeEvent, keystrokeBuffer)
	readErr := make(chan error, 1)
	go func() {
		defer close(events)
		_, err := capture.NewStdinSource(r).Run(ctx, events)
		readErr <- err
	}()

	var report IngestReport
	var firstErr error
	err := m.ingester.Run(ctx, events, func(outcome ingest.Outcome, err error) {
		if err != nil {
			report.Failed++
			if firstErr == nil {
				firstErr = err
			}
		} else {
			report.Ingested++
		}
		m.handleOutcome(outcome, err)
	})
	if err != nil {
		return report, err
	}
	if err := <-readErr; err != nil {
		return report, err
	}
	return report, firstErr
}

// Reset clears all tracking data. Settings are kept.
func (m *Manager) Reset() error {
	if err := m.store.Reset(); err != nil {
		metrics.PersistenceErrors.Inc()
		return err
	}
	metrics.TodayKeystrokes.Set(0)
	m.broadcast(StatsChangedEvent{Day: tracking.DayKey(m.store.Now())})
	return nil
}

// Export writes a JSON backup to path.
func (m *Manager) Export(path string) error {
	if err := m.codec.ExportFile(path); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// ExportTo writes a JSON backup to w.
func (m *Manager) ExportTo(w io.Writer) error {
	return m.codec.Export(w)
}

// ExportCSV writes the daily totals to path.
func (m *Manager) ExportCSV(path string) error {
	if err := m.codec.ExportCSV(path); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// Import restores a JSON backup from path, replacing all tracking data.
func (m *Manager) Import(path string) error {
	if err := m.codec.ImportFile(path); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	today := m.store.Today()
	metrics.TodayKeystrokes.Set(float64(today))
	m.broadcast(StatsChangedEvent{Day: tracking.DayKey(m.store.Now()), Today: today})
	m.broadcast(SettingsChangedEvent{Settings: m.store.Settings()})
	return nil
}

// Analytics returns the read-only analytics engine.
func (m *Manager) Analytics() *analytics.Engine {
	return m.engine
}

// Store returns the counter store.
func (m *Manager) Store() *tracking.Store {
	return m.store
}

// Settings returns the current user settings.
func (m *Manager) Settings() models.Settings {
	return m.store.Settings()
}

// SetDailyGoal stores a new goal clamped to the allowed range and evaluates
// today's milestones against it.
func (m *Manager) SetDailyGoal(goal int) (int, error) {
	goal = models.ClampGoal(goal)
	if err := m.store.SetDailyGoal(goal); err != nil {
		return m.store.Settings().DailyGoal, err
	}
	m.broadcast(SettingsChangedEvent{Settings: m.store.Settings()})

	day := tracking.DayKey(m.store.Now())
	reached, err := m.evaluator.Evaluate(day, m.store.CountFor(day))
	for _, r := range reached {
		metrics.MilestonesNotified.Inc()
		m.broadcast(MilestoneReachedEvent{Reached: r})
	}
	if err != nil {
		logger.Warn("failed to evaluate milestones after goal change", "error", err)
	}
	return goal, nil
}

// AdjustDailyGoal moves the goal by steps of models.DailyGoalStep.
func (m *Manager) AdjustDailyGoal(steps int) (int, error) {
	return m.SetDailyGoal(m.store.Settings().DailyGoal + steps*models.DailyGoalStep)
}

// CycleTheme switches to the next theme and returns it.
func (m *Manager) CycleTheme() (models.Theme, error) {
	next := m.store.Settings().Theme.Next()
	if err := m.store.SetTheme(next); err != nil {
		return m.store.Settings().Theme, err
	}
	m.broadcast(SettingsChangedEvent{Settings: m.store.Settings()})
	return next, nil
}

// SetWakaTimeAPIKey stores a new API key.
func (m *Manager) SetWakaTimeAPIKey(key string) error {
	if err := m.store.SetAPIKey(key); err != nil {
		return err
	}
	m.broadcast(SettingsChangedEvent{Settings: m.store.Settings()})
	return nil
}

// RefreshWakaTime fetches today's coding minutes now.
func (m *Manager) RefreshWakaTime(ctx context.Context) (models.WakaTimeStatus, error) {
	if m.wakatime != nil {
		return m.wakatime.Refresh(ctx)
	}

	minutes, err := m.fetcher.FetchToday(ctx, m.store.Settings().WakaTimeAPIKey)
	if err != nil {
		if !errors.Is(err, wakatime.ErrNoAPIKey) {
			metrics.WakaTimeFetchErrors.Inc()
		}
		return models.WakaTimeStatus{Error: err.Error()}, err
	}
	return models.WakaTimeStatus{Minutes: minutes, FetchedAt: m.now()}, nil
}

// WakaTimeStatus returns the latest cached WakaTime reading.
func (m *Manager) WakaTimeStatus() models.WakaTimeStatus {
	if m.wakatime == nil {
		return models.WakaTimeStatus{}
	}
	return m.wakatime.Status()
}

// Config returns the configuration the manager was opened with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// MetricsAddr returns the bound metrics address, or "" when disabled.
func (m *Manager) MetricsAddr() string {
	if m.metricsServer == nil {
		return ""
	}
	return m.metricsServer.Addr()
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops background work and closes the database.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if m.stopChan != nil {
		close(m.stopChan)
	}

	var errs []error

	if m.tailer != nil {
		if err := m.tailer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	// The tailer is closed first so nothing lands in the queue after the
	// ingest worker drains it.
	if m.cancelIngest != nil {
		m.cancelIngest()
		<-m.ingestDone
	}

	if m.wakatime != nil {
		if err := m.wakatime.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.metricsServer != nil {
		if err := m.metricsServer.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
