package analytics

import "github.com/typesteps/typesteps/internal/models"

// book is a milestone measured in characters.
type book struct {
	label     string
	threshold int
}

// library is ordered from shortest to longest.
var library = []book{
	{"A Tweet", 280},
	{"A Short Essay", 5_000},
	{"A Short Story", 40_000},
	{"The Old Man and the Sea", 140_000},
	{"The Great Gatsby", 270_000},
	{"Harry Potter and the Philosopher's Stone", 440_000},
	{"The Lord of the Rings", 2_500_000},
	{"War and Peace", 3_100_000},
}

func libraryProgress(total int) []models.LibraryProgress {
	out := make([]models.LibraryProgress, len(library))
	for i, b := range library {
		progress := float64(total) / float64(b.threshold)
		if progress > 1 {
			progress = 1
		}
		out[i] = models.LibraryProgress{
			Label:      b.label,
			Threshold:  b.threshold,
			Progress:   progress,
			Iterations: total / b.threshold,
		}
	}
	return out
}
