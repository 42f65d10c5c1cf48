package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fakeyudi/stride/internal/session"
)

// DiskStore keeps runs.json and session.json in one directory. Every write
// replaces the whole file atomically.
type DiskStore struct {
	runsPath    string
	sessionPath string
}

// NewDiskStore returns a DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &DiskStore{
		runsPath:    filepath.Join(dir, "runs.json"),
		sessionPath: filepath.Join(dir, "session.json"),
	}, nil
}

func (d *DiskStore) LoadAllRuns(ctx context.Context) ([]session.Run, error) {
	runs, _, err := d.LoadAllRunsReport(ctx)
	return runs, err
}

// LoadAllRunsReport is LoadAllRuns plus a count of dropped records.
func (d *DiskStore) LoadAllRunsReport(ctx context.Context) ([]session.Run, LoadReport, error) {
	raw, err := d.readRaw()
	if err != nil {
		return nil, LoadReport{}, err
	}
	records := make([][]byte, len(raw))
	for i, r := range raw {
		records[i] = r
	}
	runs, rep := decodeRuns(ctx, records)
	return runs, rep, nil
}

// readRaw returns the stored records undecoded, so that writes can keep
// records the loader drops.
func (d *DiskStore) readRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(d.runsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse run history: %w", err)
	}
	return raw, nil
}

// recordID reads the id of a raw record. Records that are not objects have
// none.
func recordID(rec json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(rec, &head) != nil {
		return ""
	}
	return head.ID
}

func (d *DiskStore) LoadRun(ctx context.Context, id string) (session.Run, error) {
	runs, err := d.LoadAllRuns(ctx)
	if err != nil {
		return session.Run{}, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
	}
	return session.Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
}

// Save inserts r, replacing any stored record with the same id. Other
// records are written back untouched, including ones the loader skips.
func (d *DiskStore) Save(ctx context.Context, r session.Run) error {
	raw, err := d.readRaw()
	if err != nil {
		return err
	}
	rec, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", r.ID, err)
	}
	replaced := false
	for i := range raw {
		if recordID(raw[i]) == r.ID {
			raw[i] = rec
			replaced = true
		}
	}
	if !replaced {
		raw = append(raw, rec)
	}
	if err := WriteJSONAtomic(d.runsPath, raw); err != nil {
		return fmt.Errorf("failed to persist run history: %w", err)
	}
	return nil
}

func (d *DiskStore) Delete(ctx context.Context, id string) error {
	raw, err := d.readRaw()
	if err != nil {
		return err
	}
	kept := raw[:0]
	for _, rec := range raw {
		if id == "" || recordID(rec) != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(raw) {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err := WriteJSONAtomic(d.runsPath, kept); err != nil {
		return fmt.Errorf("failed to persist run history: %w", err)
	}
	return nil
}

func (d *DiskStore) LoadInProgress(ctx context.Context) (*session.RunSession, error) {
	data, err := os.ReadFile(d.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read in-progress run: %w", err)
	}
	return decodeSession(data)
}

func (d *DiskStore) SaveInProgress(ctx context.Context, s *session.RunSession) error {
	if s == nil {
		if err := os.Remove(d.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear in-progress run: %w", err)
		}
		return nil
	}
	if err := WriteJSONAtomic(d.sessionPath, s); err != nil {
		return fmt.Errorf("failed to persist in-progress run: %w", err)
	}
	return nil
}

func (d *DiskStore) Close() error { return nil }
