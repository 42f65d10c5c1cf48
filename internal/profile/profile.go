// Package profile holds the runner's preferences, kept in
// ~/.config/stride/profile.json and written by the setup wizard.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fakeyudi/stride/internal/config"
	"github.com/fakeyudi/stride/internal/store"
)

// Profile holds runner-level preferences set during first-run setup.
type Profile struct {
	Name          string  `json:"name"`
	Units         string  `json:"units"`           // "km" | "mi"
	CaloriesPerKm float64 `json:"calories_per_km"` // 0 means use config
	DefaultFormat string  `json:"default_format"`  // "markdown" | "json"
	OutputDir     string  `json:"output_dir"`      // default export dir
}

// ConfigDir returns the stride config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stride"), nil
}

func profilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the saved profile. A missing file points the user at setup.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found, run 'stride setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile atomically, creating the config directory if
// needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := store.WriteJSONAtomic(p, prof); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// FillConfig copies profile values into cfg where cfg still holds the
// default. Explicit config files and environment variables win.
func (p *Profile) FillConfig(cfg *config.Config) {
	if p == nil {
		return
	}
	def := config.Defaults()
	if cfg.Units == def.Units && p.Units != "" {
		cfg.Units = p.Units
	}
	if cfg.CaloriesPerKm == def.CaloriesPerKm && p.CaloriesPerKm > 0 {
		cfg.CaloriesPerKm = p.CaloriesPerKm
	}
}

// prompter asks one question per line and falls back to a default on an
// empty answer.
type prompter struct {
	r   *bufio.Reader
	out io.Writer
}

func (p prompter) ask(question, def string) (string, error) {
	hint := ""
	if def != "" {
		hint = " [" + def + "]"
	}
	fmt.Fprintf(p.out, "  %s%s: ", question, hint)
	line, err := p.r.ReadString('\n')
	// A final answer without a trailing newline still counts.
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// choose is ask restricted to choices; anything else selects choices[0].
func (p prompter) choose(question, def string, choices ...string) (string, error) {
	ans, err := p.ask(fmt.Sprintf("%s (%s)", question, strings.Join(choices, "/")), def)
	if err != nil {
		return "", err
	}
	if slices.Contains(choices, ans) {
		return ans, nil
	}
	return choices[0], nil
}

const banner = `
  ┌─────────────────────────────────┐
  │    stride · first-time setup    │
  └─────────────────────────────────┘
`

// RunSetup walks the runner through the setup questions. Answers are read
// from in and prompts written to out. A non-nil existing profile supplies
// the defaults and is left untouched.
func RunSetup(in io.Reader, out io.Writer, existing *Profile) (*Profile, error) {
	prof := Profile{
		Units:         config.UnitsKm,
		CaloriesPerKm: config.Defaults().CaloriesPerKm,
		DefaultFormat: "markdown",
		OutputDir:     ".",
	}
	if existing != nil {
		prof = *existing
	}

	p := prompter{r: bufio.NewReader(in), out: out}
	fmt.Fprint(out, banner+"\n")

	var err error
	if prof.Name, err = p.ask("Your name (shown in reports)", prof.Name); err != nil {
		return nil, err
	}
	if prof.Units, err = p.choose("Distance units", prof.Units, config.UnitsKm, config.UnitsMi); err != nil {
		return nil, err
	}

	kcal, err := p.ask("Calories burned per km", strconv.FormatFloat(prof.CaloriesPerKm, 'f', -1, 64))
	if err != nil {
		return nil, err
	}
	if prof.CaloriesPerKm, err = strconv.ParseFloat(kcal, 64); err != nil || prof.CaloriesPerKm <= 0 {
		return nil, fmt.Errorf("calories per km must be a positive number, got %q", kcal)
	}

	if prof.DefaultFormat, err = p.choose("Default export format", prof.DefaultFormat, "markdown", "json"); err != nil {
		return nil, err
	}
	if prof.OutputDir, err = p.ask("Default export directory", prof.OutputDir); err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	return &prof, nil
}
