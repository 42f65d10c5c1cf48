// Package location turns text streams of GPS fixes into coordinates.
//
// A sample line is "lat,lon" or "lat,lon,unix_ms". Blank lines and lines
// starting with '#' are ignored.
package location

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/stride/internal/geo"
	"github.com/fakeyudi/stride/internal/session"
)

// Source produces coordinates until it is exhausted or ctx is cancelled.
// Both channels are closed when the source stops; malformed input is sent on
// the error channel and skipped.
type Source interface {
	Samples(ctx context.Context) (<-chan geo.Coordinate, <-chan error)
}

// ParseLine parses one sample line. ok is false for blank and comment lines.
// A missing timestamp is filled from now.
func ParseLine(line string, now time.Time) (c geo.Coordinate, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return geo.Coordinate{}, false, nil
	}
	fields := strings.Split(line, ",")
	if len(fields) != 2 && len(fields) != 3 {
		return geo.Coordinate{}, false, fmt.Errorf("%w: want lat,lon[,unix_ms], got %q", session.ErrInvalidInput, line)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("%w: latitude %q", session.ErrInvalidInput, fields[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("%w: longitude %q", session.ErrInvalidInput, fields[1])
	}
	ts := now.UnixMilli()
	if len(fields) == 3 {
		ts, err = strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			return geo.Coordinate{}, false, fmt.Errorf("%w: timestamp %q", session.ErrInvalidInput, fields[2])
		}
	}
	c = geo.Coordinate{Latitude: lat, Longitude: lon, Timestamp: ts}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return c, true, nil
}

// Consume drains src, calling fn for each coordinate and onErr for each
// malformed sample. It stops early and returns fn's first error.
func Consume(ctx context.Context, src Source, fn func(geo.Coordinate) error, onErr func(error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples, errs := src.Samples(ctx)
	for samples != nil || errs != nil {
		select {
		case c, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			if err := fn(c); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onErr != nil {
				onErr(err)
			}
		}
	}
	return ctx.Err()
}

// emitter forwards parsed lines onto a pair of channels.
type emitter struct {
	out  chan geo.Coordinate
	errs chan error
	now  func() time.Time
	line int
}

func newEmitter(now func() time.Time) *emitter {
	return &emitter{out: make(chan geo.Coordinate), errs: make(chan error), now: now}
}

// emit parses and sends one line. It returns false when ctx is done.
func (e *emitter) emit(ctx context.Context, text string) bool {
	e.line++
	c, ok, err := ParseLine(text, e.now())
	if err != nil {
		select {
		case e.errs <- fmt.Errorf("line %d: %w", e.line, err):
			return true
		case <-ctx.Done():
			return false
		}
	}
	if !ok {
		return true
	}
	select {
	case e.out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *emitter) fail(ctx context.Context, err error) {
	select {
	case e.errs <- err:
	case <-ctx.Done():
	}
}

func (e *emitter) close() {
	close(e.out)
	close(e.errs)
}
