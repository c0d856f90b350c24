// Package milestones decides when daily goal notifications fire.
package milestones

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/models"
)

// DefaultFractions is the milestone set used when none is configured: goal reached.
var DefaultFractions = []float64{1.0}

// Notifier delivers a milestone notification to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Log is the persisted record of milestones already notified.
type Log interface {
	Settings() models.Settings
	Notified(day string) []float64
	MarkNotified(day string, fraction float64) error
}

// Reached describes a milestone that was notified.
type Reached struct {
	Day      string
	Fraction float64
	Count    int
	Goal     int
}

// Evaluator fires each (day, fraction) milestone at most once. It is safe
// for concurrent use.
type Evaluator struct {
	log       Log
	notifier  Notifier
	fractions []float64

	// mu serializes Evaluate so the check, notify and record steps of one
	// call never interleave with another.
	mu sync.Mutex
}

// NewEvaluator creates an evaluator. A nil or empty fractions slice uses DefaultFractions.
func NewEvaluator(log Log, notifier Notifier, fractions []float64) *Evaluator {
	if len(fractions) == 0 {
		fractions = DefaultFractions
	}
	fractions = slices.Clone(fractions)
	slices.Sort(fractions)

	return &Evaluator{
		log:       log,
		notifier:  notifier,
		fractions: slices.Compact(fractions),
	}
}

// Fractions returns the configured milestone fractions, ascending.
func (e *Evaluator) Fractions() []float64 {
	return slices.Clone(e.fractions)
}

// Evaluate notifies every milestone newly reached by count on day and records it.
// A goal of zero or less disables milestones. When notifying fails the milestone
// stays unrecorded so the next evaluation retries it.
func (e *Evaluator) Evaluate(day string, count int) ([]Reached, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	goal := e.log.Settings().DailyGoal
	if goal <= 0 {
		return nil, nil
	}

	progress := float64(count) / float64(goal)
	notified := e.log.Notified(day)

	var reached []Reached
	for _, fraction := range e.fractions {
		if progress < fraction || slices.Contains(notified, fraction) {
			continue
		}

		title, message := messageFor(fraction, count, goal)
		if e.notifier != nil {
			if err := e.notifier.Notify(title, message); err != nil {
				return reached, fmt.Errorf("failed to send milestone notification: %w", err)
			}
		}

		if err := e.log.MarkNotified(day, fraction); err != nil {
			return reached, err
		}

		reached = append(reached, Reached{Day: day, Fraction: fraction, Count: count, Goal: goal})
	}

	return reached, nil
}

func messageFor(fraction float64, count, goal int) (string, string) {
	if fraction >= 1.0 {
		return "Daily Goal Reached!",
			fmt.Sprintf("Congratulations! You've typed %s keystrokes today.", humanize.Comma(int64(count)))
	}
	return fmt.Sprintf("%.0f%% of today's goal", fraction*100),
		fmt.Sprintf("%s of %s keystrokes so far.", humanize.Comma(int64(count)), humanize.Comma(int64(goal)))
}
