// Package config persists user preferences (the simulator location) and
// auto-detects installed simulators. The rest of the controller treats it
// as a collaborator: it only ever asks for a usable simulator path.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// ErrNotConfigured carries remediation guidance; it is fatal only to the
// requested operation.
var ErrNotConfigured = errors.New(
	"simulator not configured: run 'solarctl configure' to detect installed simulators or pass an explicit --simulator path")

// Config holds the persisted preferences.
type Config struct {
	SimulatorPath string `mapstructure:"simulator_path" toml:"simulator_path"`
}

// searchPatterns are the conventional install locations, newest versions
// sorting last.
func searchPatterns() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"/Applications/Corona*/Corona Simulator.app/Contents/MacOS/Corona Simulator",
		"/Applications/Solar2D*/Solar2D Simulator.app/Contents/MacOS/Solar2D Simulator",
		filepath.Join(home, "Applications/Corona*/Corona Simulator.app/Contents/MacOS/Corona Simulator"),
		filepath.Join(home, "Applications/Solar2D*/Solar2D Simulator.app/Contents/MacOS/Solar2D Simulator"),
		"/opt/Solar2D/Corona Simulator*/Solar2D Simulator",
		filepath.Join(home, ".local/share/Solar2D*/Solar2D Simulator"),
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "solarctl", "config.toml")
}

// Store reads and writes the preference file. A zero Store uses
// DefaultPath; tests point Path at a temp file.
type Store struct {
	Path string
}

func (s Store) path() string {
	if s.Path != "" {
		return s.Path
	}
	return DefaultPath()
}

// Load returns the persisted config, or a zero config when the file does
// not exist yet.
func (s Store) Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(s.path())
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save persists the config, creating the directory if needed.
func (s Store) Save(c Config) error {
	path := s.path()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.Set("simulator_path", c.SimulatorPath)
	return v.WriteConfigAs(path)
}

// Detect globs the conventional install locations and returns all hits,
// sorted so the newest version lands last.
func Detect() []string {
	var found []string
	seen := map[string]struct{}{}
	for _, pattern := range searchPatterns() {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				found = append(found, m)
			}
		}
	}
	sort.Strings(found)
	return found
}

// SimulatorOrDetect resolves the simulator path. A saved path that still
// exists wins; a stale saved path is cleared. When detection has to stand
// in for a saved path the caller must confirm it before use.
func (s Store) SimulatorOrDetect() (path string, detected []string, needsConfirm bool, err error) {
	c, err := s.Load()
	if err != nil {
		return "", nil, false, err
	}
	detected = Detect()

	if c.SimulatorPath != "" {
		if _, statErr := os.Stat(c.SimulatorPath); statErr == nil {
			return c.SimulatorPath, detected, false, nil
		}
		// Stale entry: forget it so the next save starts clean.
		if saveErr := s.Save(Config{}); saveErr != nil {
			return "", detected, true, saveErr
		}
	}

	if len(detected) > 0 {
		return detected[len(detected)-1], detected, true, nil
	}
	return "", nil, true, nil
}
