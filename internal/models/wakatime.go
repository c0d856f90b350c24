package models

import "time"

// WakaTimeStatus is the latest coding-time reading from WakaTime.
type WakaTimeStatus struct {
	Minutes   float64
	FetchedAt time.Time
	Error     string
}
