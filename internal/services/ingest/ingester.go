// Package ingest applies captured keystroke events to the counters.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/typesteps/typesteps/internal/metrics"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services/milestones"
	"github.com/typesteps/typesteps/internal/services/tracking"
)

// ErrInvalidEvent is returned for events without a timestamp.
var ErrInvalidEvent = errors.New("invalid keystroke event")

// Counter applies one keystroke to the counters.
type Counter interface {
	Increment(ts time.Time, app, bundle, project string) (tracking.Result, error)
}

// MilestoneEvaluator is called after every accepted keystroke.
type MilestoneEvaluator interface {
	Evaluate(day string, count int) ([]milestones.Reached, error)
}

// Classifier labels keystrokes for metrics.
type Classifier interface {
	Classify(appName, bundleID string) models.Category
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(appName, bundleID string) models.Category

// Classify implements Classifier.
func (f ClassifierFunc) Classify(appName, bundleID string) models.Category {
	return f(appName, bundleID)
}

// Outcome reports what an ingested event changed.
type Outcome struct {
	tracking.Result
	Reached []milestones.Reached
}

// Ingester is the single writer between the capture stream and the counters.
type Ingester struct {
	counter    Counter
	evaluator  MilestoneEvaluator
	classifier Classifier
}

// New creates an ingester. evaluator and classifier may be nil.
func New(counter Counter, evaluator MilestoneEvaluator, classifier Classifier) *Ingester {
	return &Ingester{
		counter:    counter,
		evaluator:  evaluator,
		classifier: classifier,
	}
}

// Ingest counts one event and evaluates milestones for its day.
// Persistence and notification failures are returned, never dropped.
func (i *Ingester) Ingest(event models.KeystrokeEvent) (Outcome, error) {
	if event.Timestamp.IsZero() {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return Outcome{}, ErrInvalidEvent
	}

	result, err := i.counter.Increment(event.Timestamp, event.AppName, event.BundleID, event.ProjectName)
	outcome := Outcome{Result: result}

	metrics.KeystrokesTotal.WithLabelValues(string(i.category(event))).Inc()
	metrics.TodayKeystrokes.Set(float64(result.DayCount))

	if err != nil {
		metrics.PersistenceErrors.Inc()
		return outcome, err
	}

	if i.evaluator == nil {
		return outcome, nil
	}

	reached, err := i.evaluator.Evaluate(result.Day, result.DayCount)
	outcome.Reached = reached
	metrics.MilestonesNotified.Add(float64(len(reached)))
	if err != nil {
		return outcome, fmt.Errorf("failed to evaluate milestones: %w", err)
	}
	return outcome, nil
}

func (i *Ingester) category(event models.KeystrokeEvent) models.Category {
	if i.classifier == nil || event.AppName == "" {
		return models.CategoryOther
	}
	return i.classifier.Classify(event.AppName, event.BundleID)
}

// Run ingests events in arrival order until ctx is done or events is closed.
// handle, when set, receives every outcome and error. Events already queued
// when ctx is cancelled are still ingested before Run returns.
func (i *Ingester) Run(ctx context.Context, events <-chan models.KeystrokeEvent, handle func(Outcome, error)) error {
	for {
		select {
		case <-ctx.Done():
			i.drain(events, handle)
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			i.handle(event, handle)
		}
	}
}

// drain ingests whatever is buffered in events without waiting for more.
func (i *Ingester) drain(events <-chan models.KeystrokeEvent, handle func(Outcome, error)) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			i.handle(event, handle)
		default:
			return
		}
	}
}

func (i *Ingester) handle(event models.KeystrokeEvent, handle func(Outcome, error)) {
	outcome, err := i.Ingest(event)
	if handle != nil {
		handle(outcome, err)
	}
}
