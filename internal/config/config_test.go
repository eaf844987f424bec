package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"labprep/internal/config"
	"labprep/internal/label"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, "labprep"); cfg.OutDir != want {
		t.Fatalf("unexpected out_dir: got %q want %q", cfg.OutDir, want)
	}
	if cfg.Segmentation.MaxPauseDurationTicks != 10_000_000 {
		t.Fatalf("unexpected pause ticks: %d", cfg.Segmentation.MaxPauseDurationTicks)
	}
	if cfg.Segmentation.MaxSegmentLengthTicks != 150_000_000 {
		t.Fatalf("unexpected length ticks: %d", cfg.Segmentation.MaxSegmentLengthTicks)
	}
	if strings.Join(cfg.Segmentation.PauseSymbols, ",") != "pau,sil" {
		t.Fatalf("unexpected pause symbols: %v", cfg.Segmentation.PauseSymbols)
	}
	if !cfg.Segmentation.FailFast {
		t.Fatal("expected fail_fast by default")
	}
	if strings.Join(cfg.Validation.PauseSymbols, ",") != "pau,sil" {
		t.Fatalf("unexpected drift pause symbols: %v", cfg.Validation.PauseSymbols)
	}
	if cfg.Validation.Strictness != "" {
		t.Fatalf("expected per-check strictness defaults, got %q", cfg.Validation.Strictness)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.StateDir()); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadCustomTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "labprep.toml")

	type payload struct {
		OutDir       string `toml:"out_dir"`
		Segmentation struct {
			MaxPauseDuration float64  `toml:"max_pause_duration"`
			MaxSegmentLength float64  `toml:"max_segment_length"`
			PauseSymbols     []string `toml:"pause_symbols"`
		} `toml:"segmentation"`
		Validation struct {
			Strictness string `toml:"strictness"`
		} `toml:"validation"`
	}
	custom := payload{OutDir: filepath.Join(tempDir, "data")}
	custom.Segmentation.MaxPauseDuration = 0.0055
	custom.Segmentation.MaxSegmentLength = 0.1
	custom.Segmentation.PauseSymbols = []string{" pau ", "pau", "br"}
	custom.Validation.Strictness = " Strict "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Segmentation.MaxPauseDurationTicks != label.Ticks(55000) {
		t.Fatalf("pause ticks = %d, want 55000", cfg.Segmentation.MaxPauseDurationTicks)
	}
	if cfg.Segmentation.MaxSegmentLengthTicks != label.Ticks(1_000_000) {
		t.Fatalf("length ticks = %d, want 1000000", cfg.Segmentation.MaxSegmentLengthTicks)
	}
	if strings.Join(cfg.Segmentation.PauseSymbols, ",") != "pau,br" {
		t.Fatalf("pause symbols not normalized: %v", cfg.Segmentation.PauseSymbols)
	}
	if cfg.Validation.Strictness != "strict" {
		t.Fatalf("strictness = %q, want strict", cfg.Validation.Strictness)
	}
}

func TestLoadRecipeYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	content := strings.Join([]string{
		`out_dir: "` + filepath.Join(tempDir, "recipe") + `"`,
		"max_pause_duration: 0.5",
		"max_segment_length: 12",
		"stage0:",
		"  vowel_duration_check: lenient",
		"acoustic_model: ignored",
		"",
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OutDir != filepath.Join(tempDir, "recipe") {
		t.Fatalf("unexpected out_dir %q", cfg.OutDir)
	}
	if cfg.Segmentation.MaxPauseDurationTicks != 5_000_000 {
		t.Fatalf("pause ticks = %d", cfg.Segmentation.MaxPauseDurationTicks)
	}
	if cfg.Segmentation.MaxSegmentLengthTicks != 120_000_000 {
		t.Fatalf("length ticks = %d", cfg.Segmentation.MaxSegmentLengthTicks)
	}
	if cfg.Validation.Strictness != "lenient" {
		t.Fatalf("strictness = %q", cfg.Validation.Strictness)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"pause", func(c *config.Config) { c.Segmentation.MaxPauseDuration = 0 }, "max_pause_duration"},
		{"length", func(c *config.Config) { c.Segmentation.MaxSegmentLength = -1 }, "max_segment_length"},
		{"strictness", func(c *config.Config) { c.Validation.Strictness = "harsh" }, "strictness"},
		{"interval", func(c *config.Config) { c.TrainList.Interval = 4 }, "interval"},
		{"select", func(c *config.Config) { c.TrainList.SelectBy = "album" }, "select_by"},
		{"workers", func(c *config.Config) { c.Workers = -2 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "labprep.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}
