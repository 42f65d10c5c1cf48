package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/stride/internal/geo"
)

// Follower tails a sample file, emitting lines as they are appended until
// ctx is cancelled. Lines already in the file are emitted first.
type Follower struct {
	path string
	now  func() time.Time

	offset  int64
	partial []byte
}

// NewFollower returns a Source that follows path. The file may not exist
// yet; it is picked up when created.
func NewFollower(path string) *Follower {
	return &Follower{path: path, now: time.Now}
}

func (f *Follower) Samples(ctx context.Context) (<-chan geo.Coordinate, <-chan error) {
	em := newEmitter(f.now)
	go func() {
		defer em.close()
		if err := f.follow(ctx, em); err != nil {
			em.fail(ctx, err)
		}
	}()
	return em.out, em.errs
}

func (f *Follower) follow(ctx context.Context, em *emitter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory so that creation and replacement of the file are
	// both seen.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(f.path)

	if !f.drain(ctx, em) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) {
				// A recreated file starts over.
				f.offset, f.partial = 0, nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if !f.drain(ctx, em) {
					return nil
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			em.fail(ctx, err)
		}
	}
}

// drain reads everything past the current offset and emits complete lines.
// It returns false when ctx is done.
func (f *Follower) drain(ctx context.Context, em *emitter) bool {
	file, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			em.fail(ctx, err)
		}
		return ctx.Err() == nil
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() < f.offset {
		// Truncated.
		f.offset, f.partial = 0, nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		em.fail(ctx, err)
		return ctx.Err() == nil
	}
	data, err := io.ReadAll(file)
	if err != nil {
		em.fail(ctx, err)
		return ctx.Err() == nil
	}
	f.offset += int64(len(data))

	buf := append(f.partial, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		if !em.emit(ctx, string(buf[:i])) {
			return false
		}
		buf = buf[i+1:]
	}
	f.partial = append([]byte(nil), buf...)
	return true
}
