package wakatime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/metrics"
	"github.com/typesteps/typesteps/internal/models"
)

// DefaultRefreshInterval is used when the configured interval is not positive.
const DefaultRefreshInterval = 5 * time.Minute

// KeyProvider supplies the current API key.
type KeyProvider interface {
	Settings() models.Settings
}

// Fetcher retrieves today's coding minutes.
type Fetcher interface {
	FetchToday(ctx context.Context, apiKey string) (float64, error)
}

// EventType defines the type of WakaTime event.
type EventType int

const (
	// EventUpdated indicates a successful fetch.
	EventUpdated EventType = iota
	// EventError indicates a failed fetch. The previous reading is kept.
	EventError
)

// Event represents a WakaTime service event.
type Event struct {
	Error  error
	Status models.WakaTimeStatus
	Type   EventType
}

// Service polls WakaTime in the background and caches the latest reading.
type Service struct {
	fetcher   Fetcher
	keys      KeyProvider
	interval  time.Duration
	status    models.WakaTimeStatus
	eventChan chan Event
	stopChan  chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewService creates the service and starts polling.
func NewService(fetcher Fetcher, keys KeyProvider, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	s := &Service{
		fetcher:   fetcher,
		keys:      keys,
		interval:  interval,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	go s.poll()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Status returns the latest reading.
func (s *Service) Status() models.WakaTimeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Refresh fetches today's minutes now. Without an API key it returns
// ErrNoAPIKey and emits nothing.
func (s *Service) Refresh(ctx context.Context) (models.WakaTimeStatus, error) {
	key := s.keys.Settings().WakaTimeAPIKey
	if key == "" {
		s.mu.Lock()
		s.status = models.WakaTimeStatus{}
		s.mu.Unlock()
		return models.WakaTimeStatus{}, ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	minutes, err := s.fetcher.FetchToday(ctx, key)

	s.mu.Lock()
	if err != nil {
		s.status.Error = err.Error()
	} else {
		s.status = models.WakaTimeStatus{Minutes: minutes, FetchedAt: time.Now()}
	}
	status := s.status
	s.mu.Unlock()

	if err != nil {
		metrics.WakaTimeFetchErrors.Inc()
		s.sendEvent(Event{Type: EventError, Error: err, Status: status})
		return status, err
	}

	s.sendEvent(Event{Type: EventUpdated, Status: status})
	return status, nil
}

// poll runs the background polling goroutine.
func (s *Service) poll() {
	s.refreshQuietly()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshQuietly()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) refreshQuietly() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrNoAPIKey) {
		logger.Warn("wakatime refresh failed", "error", err)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops polling.
func (s *Service) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	return nil
}
