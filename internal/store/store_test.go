package store_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/stride/internal/config"
	"github.com/fakeyudi/stride/internal/geo"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/store"
)

var t0 = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

func completedRun(t *testing.T, id string, start time.Time) session.Run {
	t.Helper()
	s := session.Start(start, session.WithID(id))
	require.NoError(t, s.AddSample(geo.Coordinate{Latitude: 0, Longitude: 0, Timestamp: start.UnixMilli()}))
	require.NoError(t, s.AddSample(geo.Coordinate{Latitude: 0, Longitude: 0.01, Timestamp: start.Add(10 * time.Second).UnixMilli()}))
	r, err := s.Complete(start.Add(10 * time.Second))
	require.NoError(t, err)
	return r
}

type backend struct {
	name string
	open func(t *testing.T) store.RunStore
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T) store.RunStore {
			s, err := store.NewDiskStore(t.TempDir())
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) store.RunStore {
			db, err := sql.Open("sqlite", ":memory:")
			require.NoError(t, err)
			// Every pooled connection would otherwise get its own database.
			db.SetMaxOpenConns(1)
			require.NoError(t, store.InitSchema(context.Background(), db))
			return store.NewSQLiteStore(db)
		}},
		{"redis", func(t *testing.T) store.RunStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			return store.NewRedisStore(client, "test:")
		}},
	}
}

func TestRunStoreContract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			t.Cleanup(func() { s.Close() })

			runs, err := s.LoadAllRuns(ctx)
			require.NoError(t, err)
			assert.Empty(t, runs)

			later := completedRun(t, "later", t0.Add(48*time.Hour))
			earlier := completedRun(t, "earlier", t0)
			require.NoError(t, s.Save(ctx, later))
			require.NoError(t, s.Save(ctx, earlier))

			runs, err = s.LoadAllRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "earlier", runs[0].ID, "runs come back oldest first")
			assert.Equal(t, "later", runs[1].ID)
			assert.InDelta(t, earlier.TotalDistanceKm, runs[0].TotalDistanceKm, 1e-12)
			assert.Equal(t, earlier.ActiveDurationSeconds, runs[0].ActiveDurationSeconds)
			assert.Len(t, runs[0].Samples, 2)

			got, err := s.LoadRun(ctx, "later")
			require.NoError(t, err)
			assert.True(t, got.StartedAt.Equal(later.StartedAt))

			// Saving the same id replaces the record.
			require.NoError(t, s.Save(ctx, earlier))
			runs, err = s.LoadAllRuns(ctx)
			require.NoError(t, err)
			assert.Len(t, runs, 2)

			require.NoError(t, s.Delete(ctx, "earlier"))
			err = s.Delete(ctx, "earlier")
			assert.True(t, errors.Is(err, store.ErrRunNotFound), "got %v", err)
			_, err = s.LoadRun(ctx, "earlier")
			assert.True(t, errors.Is(err, store.ErrRunNotFound), "got %v", err)
		})
	}
}

func TestInProgressContract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			t.Cleanup(func() { s.Close() })

			got, err := s.LoadInProgress(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)

			live := session.Start(t0, session.WithID("live"))
			require.NoError(t, live.AddSample(geo.Coordinate{Latitude: 1, Longitude: 2, Timestamp: t0.UnixMilli()}))
			require.NoError(t, live.Pause(t0.Add(time.Minute)))
			require.NoError(t, s.SaveInProgress(ctx, live))

			got, err = s.LoadInProgress(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "live", got.ID)
			assert.Equal(t, session.StatusPaused, got.Status)
			require.Len(t, got.Pauses, 1)
			assert.True(t, got.Pauses[0].Open())
			assert.Len(t, got.Samples, 1)

			require.NoError(t, s.SaveInProgress(ctx, nil))
			got, err = s.LoadInProgress(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)

			// Clearing twice is fine.
			require.NoError(t, s.SaveInProgress(ctx, nil))
		})
	}
}

func TestDiskStoreDropsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewDiskStore(dir)
	require.NoError(t, err)

	good := completedRun(t, "good", t0)
	require.NoError(t, s.Save(context.Background(), good))

	data, err := os.ReadFile(filepath.Join(dir, "runs.json"))
	require.NoError(t, err)
	// Append an invalid record and one that is not even an object.
	patched := append(data[:len(data)-1], []byte(`,{"id":"","started_at":"2024-01-01T00:00:00Z"},"junk"]`)...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runs.json"), patched, 0o644))

	runs, rep, err := s.LoadAllRunsReport(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "good", runs[0].ID)
	assert.Equal(t, store.LoadReport{Loaded: 1, Dropped: 2}, rep)
}

// rawBackend is a store plus direct access to its stored records, to plant
// records the loader refuses.
type rawBackend struct {
	name  string
	store store.RunStore
	plant func(id, data string)
	has   func(id string) bool
}

func rawBackends(t *testing.T) []rawBackend {
	ctx := context.Background()

	dir := t.TempDir()
	disk, err := store.NewDiskStore(dir)
	require.NoError(t, err)
	runsFile := filepath.Join(dir, "runs.json")

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, store.InitSchema(ctx, db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return []rawBackend{
		{
			name:  "file",
			store: disk,
			plant: func(id, data string) {
				require.NoError(t, os.WriteFile(runsFile, []byte("["+data+"]"), 0o644))
			},
			has: func(id string) bool {
				b, err := os.ReadFile(runsFile)
				require.NoError(t, err)
				return strings.Contains(string(b), `"`+id+`"`)
			},
		},
		{
			name:  "sqlite",
			store: store.NewSQLiteStore(db),
			plant: func(id, data string) {
				_, err := db.Exec(`INSERT INTO runs (id, started_at, data) VALUES (?, 0, ?);`, id, data)
				require.NoError(t, err)
			},
			has: func(id string) bool {
				var n int
				require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?;`, id).Scan(&n))
				return n == 1
			},
		},
		{
			name:  "redis",
			store: store.NewRedisStore(client, "test:"),
			plant: func(id, data string) {
				mr.HSet("test:runs", id, data)
			},
			has: func(id string) bool {
				return mr.HGet("test:runs", id) != ""
			},
		},
	}
}

func TestSkippedRecordsSurviveWrites(t *testing.T) {
	const bad = `{"id":"future","started_at":"2030-01-01T00:00:00Z","ended_at":"2020-01-01T00:00:00Z"}`
	for _, b := range rawBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			b.plant("future", bad)

			require.NoError(t, b.store.Save(ctx, completedRun(t, "a", t0)))
			require.NoError(t, b.store.Save(ctx, completedRun(t, "b", t0.Add(time.Hour))))
			require.NoError(t, b.store.Delete(ctx, "a"))

			assert.True(t, b.has("future"), "skipped record must stay in storage")
			runs, err := b.store.LoadAllRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, "b", runs[0].ID)

			_, err = b.store.LoadRun(ctx, "future")
			assert.ErrorIs(t, err, store.ErrRunNotFound)
		})
	}
}

func TestDiskStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runs.json"), []byte("{"), 0o644))
	s, err := store.NewDiskStore(dir)
	require.NoError(t, err)
	_, err = s.LoadAllRuns(context.Background())
	assert.Error(t, err)
}

func TestDiskStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), completedRun(t, "a", t0)))
	require.NoError(t, s.SaveInProgress(context.Background(), session.Start(t0)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"runs.json", "session.json"}, names)
}

func TestRedisStoreUsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedisStore(client, "")
	require.NoError(t, s.Save(context.Background(), completedRun(t, "a", t0)))
	assert.True(t, mr.Exists(store.DefaultRedisPrefix+"runs"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.DataDir = t.TempDir()
		s, err := store.Open(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &store.DiskStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Store = config.StoreSQLite
		cfg.DataDir = t.TempDir()
		s, err := store.Open(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Save(ctx, completedRun(t, "a", t0)))
		assert.FileExists(t, filepath.Join(cfg.DataDir, "stride.db"))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Defaults()
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = mr.Addr()
		cfg.DataDir = t.TempDir()
		s, err := store.Open(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &store.RedisStore{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Store = "tape"
		cfg.DataDir = t.TempDir()
		_, err := store.Open(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestDataDirHonoursXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	dir, err := store.DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "stride"), dir)
}
