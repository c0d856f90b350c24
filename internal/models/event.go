package models

import "time"

// KeystrokeEvent is one counted keystroke with the context resolved by the capture helper.
// The typed character is never part of it.
type KeystrokeEvent struct {
	Timestamp   time.Time
	AppName     string
	BundleID    string
	ProjectName string
}
