// Package capture turns the platform helper's keystroke spool into events.
package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/typesteps/typesteps/internal/metrics"
	"github.com/typesteps/typesteps/internal/models"
)

// Character classes written by the capture helper. Only letters and digits count.
const (
	ClassLetter = "letter"
	ClassDigit  = "digit"
	ClassOther  = "other"
)

// UnknownApp names keystrokes whose window could be read but whose application could not.
const UnknownApp = "Unknown"

// ErrMalformedRecord is returned for spool lines that are not valid records.
var ErrMalformedRecord = errors.New("malformed spool record")

// Record is one line of the capture spool. Key content is never written.
type Record struct {
	Timestamp time.Time `json:"ts"`
	Class     string    `json:"class"`
	App       string    `json:"app,omitempty"`
	Bundle    string    `json:"bundle,omitempty"`
	Title     string    `json:"title,omitempty"`
	Project   string    `json:"project,omitempty"`
}

// Countable reports whether the record represents a counted keystroke.
func (r Record) Countable() bool {
	return r.Class == ClassLetter || r.Class == ClassDigit
}

// Event converts the record into a keystroke event, filling in the
// application fallback and the project parsed from the window title.
func (r Record) Event() models.KeystrokeEvent {
	app := r.App
	if app == "" && (r.Bundle != "" || r.Title != "") {
		app = UnknownApp
	}

	project := r.Project
	if project == "" {
		project = ParseProject(app, r.Bundle, r.Title)
	}

	return models.KeystrokeEvent{
		Timestamp:   r.Timestamp,
		AppName:     app,
		BundleID:    r.Bundle,
		ProjectName: project,
	}
}

// DecodeLine parses one spool line. ok is false for blank lines and for
// records that must not be counted.
func DecodeLine(line []byte) (event models.KeystrokeEvent, ok bool, err error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return models.KeystrokeEvent{}, false, nil
	}

	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		metrics.EventsRejected.WithLabelValues("malformed").Inc()
		return models.KeystrokeEvent{}, false, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.Timestamp.IsZero() {
		metrics.EventsRejected.WithLabelValues("malformed").Inc()
		return models.KeystrokeEvent{}, false, fmt.Errorf("%w: missing timestamp", ErrMalformedRecord)
	}
	if !rec.Countable() {
		metrics.EventsRejected.WithLabelValues("filtered").Inc()
		return models.KeystrokeEvent{}, false, nil
	}

	return rec.Event(), true, nil
}
