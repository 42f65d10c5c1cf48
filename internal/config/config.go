package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable stride settings.
type Config struct {
	CaloriesPerKm float64 `json:"calories_per_km"`
	Units         string  `json:"units"` // "km" | "mi"
	Store         string  `json:"store"` // "file" | "sqlite" | "redis"
	DataDir       string  `json:"data_dir"`
	SQLitePath    string  `json:"sqlite_path"`
	RedisAddr     string  `json:"redis_addr"`
	RedisPassword string  `json:"redis_password"`
	RedisPrefix   string  `json:"redis_prefix"`
	PaceTolerance float64 `json:"pace_tolerance"` // min/km either side of a segment target
	HTTPAddr      string  `json:"http_addr"`
	Timezone      string  `json:"timezone"` // IANA name; empty means the local zone
}

const (
	UnitsKm = "km"
	UnitsMi = "mi"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		CaloriesPerKm: 62,
		Units:         UnitsKm,
		Store:         StoreFile,
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "stride:",
		PaceTolerance: 0.5,
		HTTPAddr:      ":8080",
	}
}

// LoadGlobal reads ~/.config/stride/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "stride", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .strideconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".strideconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	overlay(&result, global)
	overlay(&result, project)
	return result
}

// overlay copies every set field of src over dst.
func overlay(dst, src *Config) {
	if src == nil {
		return
	}
	if src.CaloriesPerKm != 0 {
		dst.CaloriesPerKm = src.CaloriesPerKm
	}
	if src.PaceTolerance != 0 {
		dst.PaceTolerance = src.PaceTolerance
	}
	for _, f := range []struct{ dst, src *string }{
		{&dst.Units, &src.Units},
		{&dst.Store, &src.Store},
		{&dst.DataDir, &src.DataDir},
		{&dst.SQLitePath, &src.SQLitePath},
		{&dst.RedisAddr, &src.RedisAddr},
		{&dst.RedisPassword, &src.RedisPassword},
		{&dst.RedisPrefix, &src.RedisPrefix},
		{&dst.HTTPAddr, &src.HTTPAddr},
		{&dst.Timezone, &src.Timezone},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

// LoadDotEnv loads an optional .env file from the working directory into the
// process environment. It reports whether a file was read.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// ApplyEnv overlays STRIDE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	env := Config{
		Units:         os.Getenv("STRIDE_UNITS"),
		Store:         os.Getenv("STRIDE_STORE"),
		DataDir:       os.Getenv("STRIDE_DATA_DIR"),
		SQLitePath:    os.Getenv("STRIDE_SQLITE_PATH"),
		RedisAddr:     os.Getenv("STRIDE_REDIS_ADDR"),
		RedisPassword: os.Getenv("STRIDE_REDIS_PASSWORD"),
		RedisPrefix:   os.Getenv("STRIDE_REDIS_PREFIX"),
		HTTPAddr:      os.Getenv("STRIDE_HTTP_ADDR"),
		Timezone:      os.Getenv("STRIDE_TIMEZONE"),
	}
	for key, dst := range map[string]*float64{
		"STRIDE_CALORIES_PER_KM": &env.CaloriesPerKm,
		"STRIDE_PACE_TOLERANCE":  &env.PaceTolerance,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	overlay(cfg, &env)
	return nil
}

// Validate rejects settings the rest of the program cannot act on.
func (c Config) Validate() error {
	if c.CaloriesPerKm < 0 {
		return fmt.Errorf("calories_per_km must not be negative, got %v", c.CaloriesPerKm)
	}
	if c.PaceTolerance < 0 {
		return fmt.Errorf("pace_tolerance must not be negative, got %v", c.PaceTolerance)
	}
	switch c.Units {
	case UnitsKm, UnitsMi:
	default:
		return fmt.Errorf("unknown units %q (want %q or %q)", c.Units, UnitsKm, UnitsMi)
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want file, sqlite or redis)", c.Store)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, defaulting to time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
