package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
	"github.com/felixgeelhaar/kafeel/pkg/watchersdk"
)

// LineReader reads one JSON event per line.
type LineReader struct {
	r      io.Reader
	logger *slog.Logger
	now    func() time.Time
}

// NewLineReader creates a reader over r.
func NewLineReader(r io.Reader, logger *slog.Logger) *LineReader {
	return &LineReader{
		r:      r,
		logger: observability.Component(logger, "line_reader"),
		now:    time.Now,
	}
}

// maxLineBytes bounds a single event line. Longer lines are skipped.
const maxLineBytes = 1 << 20

// Run sends decoded events to out until EOF or ctx is cancelled. Blank,
// oversized and malformed lines are skipped.
func (lr *LineReader) Run(ctx context.Context, out chan<- domain.SystemEvent) error {
	br := bufio.NewReader(lr.r)
	line := 0
	for {
		raw, tooLong, readErr := readLine(br, maxLineBytes)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read events: %w", readErr)
		}
		line++

		switch {
		case tooLong:
			lr.logger.Warn("skipping oversized event", "line", line, "limit", maxLineBytes)
		case len(raw) > 0:
			if err := lr.emit(ctx, out, raw, line); err != nil {
				return err
			}
		}

		if readErr != nil {
			return nil
		}
	}
}

func (lr *LineReader) emit(ctx context.Context, out chan<- domain.SystemEvent, raw []byte, line int) error {
	var wire watchersdk.Event
	if err := json.Unmarshal(raw, &wire); err != nil {
		lr.logger.Warn("skipping malformed event", "line", line, "error", err)
		return nil
	}
	event, err := ToSystemEvent(wire, lr.now)
	if err != nil {
		lr.logger.Warn("skipping invalid event", "line", line, "error", err)
		return nil
	}

	select {
	case out <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed and reported as tooLong without being buffered.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}
