package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/models"
)

// maxLineSize bounds a single spool record.
const maxLineSize = 64 * 1024

// StdinSource reads spool records from a stream, typically a pipe from the
// capture helper.
type StdinSource struct {
	r io.Reader
}

// NewStdinSource creates a source reading from r.
func NewStdinSource(r io.Reader) *StdinSource {
	return &StdinSource{r: r}
}

// Run sends every countable record to out until the stream ends or ctx is
// cancelled, and returns how many events were forwarded. Malformed lines are
// logged and skipped.
func (s *StdinSource) Run(ctx context.Context, out chan<- models.KeystrokeEvent) (int, error) {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	forwarded := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		event, ok, err := DecodeLine(scanner.Bytes())
		if err != nil {
			logger.Warn("skipping spool line", "line", lineNo, "error", err)
			continue
		}
		if !ok {
			continue
		}

		select {
		case out <- event:
			forwarded++
		case <-ctx.Done():
			return forwarded, ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return forwarded, fmt.Errorf("failed to read events: %w", err)
	}
	return forwarded, nil
}
