package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/config"
)

// ResolveDataDir returns cfg.DataDir, or the XDG data directory when unset.
func ResolveDataDir(cfg config.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	return dir, nil
}

// Open returns the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (RunStore, error) {
	dir, err := ResolveDataDir(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Store {
	case config.StoreFile, "":
		log.Debug(ctx, log.KV{K: "msg", V: "opening file store"}, log.KV{K: "dir", V: dir})
		return NewDiskStore(dir)

	case config.StoreSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(dir, "stride.db")
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		log.Debug(ctx, log.KV{K: "msg", V: "opening sqlite store"}, log.KV{K: "path", V: path})
		return OpenSQLite(ctx, path)

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Debug(ctx, log.KV{K: "msg", V: "opening redis store"}, log.KV{K: "addr", V: cfg.RedisAddr})
		return NewRedisStore(client, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
