package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"labprep/internal/label"
)

//go:embed sample_config.toml
var sampleConfig string

// Segmentation controls the pause-driven segmenter. Durations are seconds in
// the file; the *Ticks fields are derived during load and never decoded.
type Segmentation struct {
	MaxPauseDuration float64  `toml:"max_pause_duration"`
	MaxSegmentLength float64  `toml:"max_segment_length"`
	PauseSymbols     []string `toml:"pause_symbols"`
	FailFast         bool     `toml:"fail_fast"`

	MaxPauseDurationTicks label.Ticks `toml:"-"`
	MaxSegmentLengthTicks label.Ticks `toml:"-"`
}

// Validation controls the alignment drift checks.
type Validation struct {
	// Strictness is strict, medium, lenient, or empty to let each check use
	// its own default.
	Strictness string `toml:"strictness"`
	// Vowels are the symbols whose durations feed the drift statistics.
	Vowels []string `toml:"vowels"`
	// PauseSymbols exclude a vowel from the drift checks when they follow it.
	PauseSymbols []string `toml:"pause_symbols"`
}

// TrainList controls dev/eval/train list generation.
type TrainList struct {
	Interval int    `toml:"interval"`
	SelectBy string `toml:"select_by"`
}

// Ledger controls the SQLite run ledger.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for labprep.
//
// Configuration sections by subsystem:
//   - OutDir: root holding the *_round input and *_round_seg output directories
//   - Workers: per-song worker pool size (0 = logical CPU count)
//   - Segmentation: pause/length thresholds and pause symbols
//   - Validation: drift strictness, vowel and pause symbol sets
//   - TrainList: dev/eval/train split parameters
//   - Ledger: SQLite run history
//   - Logging: log format, level, and optional file directory
type Config struct {
	OutDir       string       `toml:"out_dir"`
	Workers      int          `toml:"workers"`
	Segmentation Segmentation `toml:"segmentation"`
	Validation   Validation   `toml:"validation"`
	TrainList    TrainList    `toml:"train_list"`
	Ledger       Ledger       `toml:"ledger"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/labprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and tick thresholds derived.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if isYAML(resolvedPath) {
			if err := decodeRecipeYAML(data, &cfg); err != nil {
				return nil, "", false, fmt.Errorf("parse config: %w", err)
			}
		} else {
			decoder := toml.NewDecoder(bytes.NewReader(data))
			if err := decoder.Decode(&cfg); err != nil {
				return nil, "", false, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	for _, name := range []string{"labprep.toml", "config.yaml"} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}

	return defaultPath, false, nil
}

// StateDir holds the ledger, lock file, and logs for a given out_dir.
func (c *Config) StateDir() string {
	return filepath.Join(c.OutDir, ".labprep")
}

// LockPath is the file locked while a run writes into out_dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir(), "labprep.lock")
}

// LedgerPath is the SQLite ledger location, defaulting to the state directory.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Ledger.Path) != "" {
		return c.Ledger.Path
	}
	return filepath.Join(c.StateDir(), "ledger.db")
}

// EnsureDirectories creates the state directory (and the log directory when set).
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.StateDir()}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SecondsToTicks converts a duration in seconds to label ticks.
func SecondsToTicks(seconds float64) label.Ticks {
	return label.Ticks(math.Round(seconds * float64(label.TicksPerSecond)))
}
