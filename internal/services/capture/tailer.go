package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/models"
)

const debounceInterval = 100 * time.Millisecond

// OffsetStore persists how far into the spool the tailer has read.
type OffsetStore interface {
	GetSpoolOffset() (int64, error)
	SetSpoolOffset(offset int64) error
}

// EventType defines the type of tailer event.
type EventType int

const (
	EventLinesRead EventType = iota
	EventError
)

// Event reports tailer progress.
type Event struct {
	Type  EventType
	Count int
	Error error
}

// SpoolTailer follows the capture spool file and forwards new records.
type SpoolTailer struct {
	mu            sync.Mutex
	path          string
	offset        int64
	offsets       OffsetStore
	out           chan<- models.KeystrokeEvent
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// NewSpoolTailer starts following path from the persisted offset. Records
// already in the file past that offset are forwarded immediately.
func NewSpoolTailer(path string, offsets OffsetStore, out chan<- models.KeystrokeEvent) (*SpoolTailer, error) {
	t := &SpoolTailer{
		path:      path,
		offsets:   offsets,
		out:       out,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if offsets != nil {
		offset, err := offsets.GetSpoolOffset()
		if err != nil {
			return nil, fmt.Errorf("failed to load spool offset: %w", err)
		}
		t.offset = offset
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	if err := t.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start spool watcher: %w", err)
	}

	go t.handleChange()
	return t, nil
}

// Events returns the tailer event channel.
func (t *SpoolTailer) Events() <-chan Event {
	return t.eventChan
}

// Offset returns the byte offset of the next unread record.
func (t *SpoolTailer) Offset() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

func (t *SpoolTailer) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher

	// Watch the directory so rotation and late creation are seen.
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go t.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (t *SpoolTailer) watchLoop() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(t.path) {
				continue
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				t.resetOffset()
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				t.resetOffset()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				t.mu.Lock()
				if t.debounceTimer != nil {
					t.debounceTimer.Stop()
				}
				t.debounceTimer = time.AfterFunc(debounceInterval, t.handleChange)
				t.mu.Unlock()
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.sendEvent(Event{Type: EventError, Error: err})

		case <-t.stopChan:
			return
		}
	}
}

func (t *SpoolTailer) resetOffset() {
	t.mu.Lock()
	t.offset = 0
	t.mu.Unlock()
}

func (t *SpoolTailer) handleChange() {
	n, err := t.readNew()
	if err != nil {
		t.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	if n > 0 {
		t.sendEvent(Event{Type: EventLinesRead, Count: n})
	}
}

// readNew forwards every complete line past the current offset. A trailing
// line without a newline is left for the next change.
func (t *SpoolTailer) readNew() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.stopChan:
		return 0, nil
	default:
	}

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open spool: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat spool: %w", err)
	}
	if info.Size() < t.offset {
		logger.Info("spool truncated, reading from start", "path", t.path)
		t.offset = 0
	}
	if info.Size() == t.offset {
		return 0, nil
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek spool: %w", err)
	}

	start := t.offset
	forwarded := 0
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.saveOffset(start)
			return forwarded, fmt.Errorf("failed to read spool: %w", err)
		}

		event, ok, decodeErr := DecodeLine(line)
		if decodeErr != nil {
			logger.Warn("skipping spool line", "offset", t.offset, "error", decodeErr)
		}
		if ok {
			select {
			case t.out <- event:
				forwarded++
			case <-t.stopChan:
				t.saveOffset(start)
				return forwarded, nil
			}
		}
		t.offset += int64(len(line))
	}

	t.saveOffset(start)
	return forwarded, nil
}

// saveOffset persists the offset when it moved. Caller holds t.mu.
func (t *SpoolTailer) saveOffset(previous int64) {
	if t.offsets == nil || t.offset == previous {
		return
	}
	if err := t.offsets.SetSpoolOffset(t.offset); err != nil {
		logger.Error("failed to persist spool offset", "error", err)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (t *SpoolTailer) sendEvent(event Event) {
	select {
	case t.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-t.eventChan:
		default:
		}
		select {
		case t.eventChan <- event:
		default:
		}
	}
}

// Close stops watching the spool. It waits for an in-flight read, so once
// it returns nothing more is sent on the output channel.
func (t *SpoolTailer) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stopChan)

		t.mu.Lock()
		if t.debounceTimer != nil {
			t.debounceTimer.Stop()
		}
		t.mu.Unlock()

		if t.watcher != nil {
			err = t.watcher.Close()
		}
	})
	return err
}
