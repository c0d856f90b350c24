package milestones

import "github.com/gen2brain/beeep"

// BeeepNotifier sends desktop notifications.
type BeeepNotifier struct {
	// Icon is an optional path to an icon image.
	Icon string
}

// Notify implements Notifier.
func (n BeeepNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, n.Icon)
}
