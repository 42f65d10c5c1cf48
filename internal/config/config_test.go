package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

// Feature: stride, Property 10: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.:-]{1,20}`)

	// Each field is independently either unset or set.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasStore") {
			cfg.Store = nonEmptyString.Draw(t, "store")
		}
		if rapid.Bool().Draw(t, "hasHTTPAddr") {
			cfg.HTTPAddr = nonEmptyString.Draw(t, "httpAddr")
		}
		if rapid.Bool().Draw(t, "hasRedisPrefix") {
			cfg.RedisPrefix = nonEmptyString.Draw(t, "redisPrefix")
		}
		if rapid.Bool().Draw(t, "hasCalories") {
			cfg.CaloriesPerKm = rapid.Float64Range(1, 200).Draw(t, "calories")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		var global, project *Config
		if rapid.Bool().Draw(t, "hasGlobal") {
			global = configGen.Draw(t, "global")
		}
		if rapid.Bool().Draw(t, "hasProject") {
			project = configGen.Draw(t, "project")
		}

		merged := Merge(global, project)
		defaults := Defaults()
		g, p := orEmpty(global), orEmpty(project)

		checkStringField(t, "Store", g.Store, p.Store, defaults.Store, merged.Store)
		checkStringField(t, "HTTPAddr", g.HTTPAddr, p.HTTPAddr, defaults.HTTPAddr, merged.HTTPAddr)
		checkStringField(t, "RedisPrefix", g.RedisPrefix, p.RedisPrefix, defaults.RedisPrefix, merged.RedisPrefix)

		wantCal := defaults.CaloriesPerKm
		if g.CaloriesPerKm != 0 {
			wantCal = g.CaloriesPerKm
		}
		if p.CaloriesPerKm != 0 {
			wantCal = p.CaloriesPerKm
		}
		if merged.CaloriesPerKm != wantCal {
			t.Fatalf("CaloriesPerKm: expected %v, got %v", wantCal, merged.CaloriesPerKm)
		}
	})
}

func orEmpty(c *Config) Config {
	if c == nil {
		return Config{}
	}
	return *c
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.CaloriesPerKm != 62 {
		t.Errorf("CaloriesPerKm: want 62, got %v", d.CaloriesPerKm)
	}
	if d.Units != UnitsKm {
		t.Errorf("Units: want %q, got %q", UnitsKm, d.Units)
	}
	if d.Store != StoreFile {
		t.Errorf("Store: want %q, got %q", StoreFile, d.Store)
	}
	if d.PaceTolerance != 0.5 {
		t.Errorf("PaceTolerance: want 0.5, got %v", d.PaceTolerance)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if *cfg != Defaults() {
		t.Errorf("want defaults, got %+v", cfg)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := filepath.Join(tmp, ".config", "stride")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STRIDE_STORE", "redis")
	t.Setenv("STRIDE_REDIS_ADDR", "cache:6380")
	t.Setenv("STRIDE_CALORIES_PER_KM", "70.5")
	t.Setenv("STRIDE_UNITS", "")

	cfg := Defaults()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != "redis" || cfg.RedisAddr != "cache:6380" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.CaloriesPerKm != 70.5 {
		t.Errorf("CaloriesPerKm: want 70.5, got %v", cfg.CaloriesPerKm)
	}
	if cfg.Units != UnitsKm {
		t.Errorf("empty env var must not override, got %q", cfg.Units)
	}
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("STRIDE_PACE_TOLERANCE", "fast")
	cfg := Defaults()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("expected an error for a non-numeric tolerance")
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	if LoadDotEnv() {
		t.Fatal("no .env file should report false")
	}

	// Register cleanup for the variable godotenv will set.
	t.Setenv("STRIDE_HTTP_ADDR", "")
	os.Unsetenv("STRIDE_HTTP_ADDR")
	if err := os.WriteFile(".env", []byte("STRIDE_HTTP_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !LoadDotEnv() {
		t.Fatal("expected .env to load")
	}
	cfg := Defaults()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: want :9999, got %q", cfg.HTTPAddr)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"negative calories":  func(c *Config) { c.CaloriesPerKm = -1 },
		"negative tolerance": func(c *Config) { c.PaceTolerance = -0.1 },
		"unknown units":      func(c *Config) { c.Units = "furlongs" },
		"unknown store":      func(c *Config) { c.Store = "postgres" },
		"bad timezone":       func(c *Config) { c.Timezone = "Mars/Olympus_Mons" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}

	cfg := Defaults()
	cfg.Timezone = "UTC"
	if err := cfg.Validate(); err != nil {
		t.Errorf("UTC should validate: %v", err)
	}
}
