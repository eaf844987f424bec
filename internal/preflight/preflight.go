package preflight

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"labprep/internal/config"
	"labprep/internal/label"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Needs selects which checks RunAll performs.
type Needs struct {
	// Inputs are stream kinds whose *_round directory must be readable.
	Inputs []label.Kind
	// Segments are stream kinds whose *_round_seg directory must be readable.
	Segments []label.Kind
}

// RunAll checks out_dir and the directories named by needs.
func RunAll(cfg *config.Config, needs Needs) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Output directory", cfg.OutDir)}
	for _, kind := range needs.Inputs {
		results = append(results, CheckReadable(kind.Dir(), filepath.Join(cfg.OutDir, kind.Dir())))
	}
	for _, kind := range needs.Segments {
		results = append(results, CheckReadable(kind.SegDir(), filepath.Join(cfg.OutDir, kind.SegDir())))
	}
	if strings.TrimSpace(cfg.Logging.Dir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	return results
}

// Failed joins every failing result into one error, or returns nil.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %w", errors.Join(errs...))
}
