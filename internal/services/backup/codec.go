package backup

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/models"
)

// Store is the state owner the codec reads from and restores into.
type Store interface {
	Snapshot() models.State
	ReplaceAll(state models.State) error
}

// Codec exports and imports the full tracker state.
type Codec struct {
	store Store
}

// New creates a codec bound to store.
func New(store Store) *Codec {
	return &Codec{store: store}
}

// Export writes the current state as a backup document.
func (c *Codec) Export(w io.Writer) error {
	return Encode(w, FromState(c.store.Snapshot()))
}

// ExportFile writes a backup to path. The file is replaced atomically, so a
// failed export never leaves a partial document behind.
func (c *Codec) ExportFile(path string) error {
	return writeAtomic(path, c.Export)
}

// Import validates a backup document and replaces the store contents with it.
// An invalid document leaves the store untouched.
func (c *Codec) Import(r io.Reader) error {
	snap, err := Decode(r)
	if err != nil {
		return err
	}

	theme := c.store.Snapshot().Settings.Theme
	if err := c.store.ReplaceAll(snap.State(theme)); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	return nil
}

// ImportFile imports the backup stored at path.
func (c *Codec) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = f.Close() }()

	return c.Import(f)
}

// WriteCSV writes one Date,Count row per recorded day, newest first.
func (c *Codec) WriteCSV(w io.Writer) error {
	daily := c.store.Snapshot().Stats.Daily

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Count"}); err != nil {
		return err
	}
	for _, day := range days {
		if err := cw.Write([]string{day, strconv.Itoa(daily[day])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the daily CSV to path.
func (c *Codec) ExportCSV(path string) error {
	return writeAtomic(path, c.WriteCSV)
}

// writeAtomic writes to a temp file next to path, then renames it into place.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
	}

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
