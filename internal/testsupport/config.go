package testsupport

import (
	"path/filepath"
	"testing"

	"labprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp out_dir per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OutDir = filepath.Join(base, "out")
	cfgVal.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithSegmentation sets the segmentation thresholds in seconds and derives
// the tick values the way Load does.
func WithSegmentation(maxPauseSeconds, maxSegmentSeconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.MaxPauseDuration = maxPauseSeconds
		b.cfg.Segmentation.MaxSegmentLength = maxSegmentSeconds
		b.cfg.Segmentation.MaxPauseDurationTicks = config.SecondsToTicks(maxPauseSeconds)
		b.cfg.Segmentation.MaxSegmentLengthTicks = config.SecondsToTicks(maxSegmentSeconds)
	}
}

// WithFailFast toggles segmentation fail-fast.
func WithFailFast(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.FailFast = enabled
	}
}

// WithWorkers overrides the worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers = n
	}
}

// WithoutLedger disables the run ledger.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.OutDir)
}
