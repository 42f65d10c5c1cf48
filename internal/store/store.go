// Package store persists completed runs and the in-progress session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/session"
)

var (
	// ErrNoSession is returned when an operation needs an in-progress run and
	// there is none.
	ErrNoSession = errors.New("no run in progress")

	// ErrRunNotFound is returned when a run id is not in the store.
	ErrRunNotFound = errors.New("run not found")
)

// RunStore persists the run history and at most one in-progress session.
type RunStore interface {
	// LoadAllRuns returns every valid run, oldest first.
	LoadAllRuns(ctx context.Context) ([]session.Run, error)
	LoadRun(ctx context.Context, id string) (session.Run, error)
	// LoadInProgress returns nil, nil when no session is in progress.
	LoadInProgress(ctx context.Context) (*session.RunSession, error)
	Save(ctx context.Context, r session.Run) error
	// SaveInProgress with a nil session clears it.
	SaveInProgress(ctx context.Context, s *session.RunSession) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// LoadReport describes what a loader kept and dropped.
type LoadReport struct {
	Loaded  int
	Dropped int
}

// DataDir returns the stride-specific XDG data directory.
// Path: $XDG_DATA_HOME/stride or ~/.local/share/stride
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "stride"), nil
}

// WriteJSONAtomic marshals v and writes it to path via a temp file in the
// same directory followed by os.Rename.
func WriteJSONAtomic(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// decodeRuns parses raw run records, drops the malformed ones and returns
// the rest oldest first.
func decodeRuns(ctx context.Context, raw [][]byte) ([]session.Run, LoadReport) {
	runs := make([]session.Run, 0, len(raw))
	var rep LoadReport
	for _, b := range raw {
		var r session.Run
		if err := json.Unmarshal(b, &r); err != nil {
			rep.Dropped++
			log.Warn(ctx, log.KV{K: "msg", V: "dropping unreadable run record"}, log.KV{K: "err", V: err.Error()})
			continue
		}
		if err := r.Validate(); err != nil {
			rep.Dropped++
			log.Warn(ctx, log.KV{K: "msg", V: "dropping invalid run record"}, log.KV{K: "run", V: r.ID}, log.KV{K: "err", V: err.Error()})
			continue
		}
		runs = append(runs, r)
	}
	sortRuns(runs)
	rep.Loaded = len(runs)
	return runs, rep
}

// decodeRun applies the loader's filter to a single record. A record the
// loader would drop is reported as not found, as it is by LoadAllRuns.
func decodeRun(ctx context.Context, id string, b []byte) (session.Run, error) {
	runs, _ := decodeRuns(ctx, [][]byte{b})
	if len(runs) == 0 {
		return session.Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return runs[0], nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

func sortRuns(runs []session.Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
}

func decodeSession(b []byte) (*session.RunSession, error) {
	var s session.RunSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to parse in-progress run: %w", err)
	}
	return &s, nil
}
