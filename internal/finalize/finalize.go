// Package finalize copies segmented full-context labels into the directory
// layout the timelag, duration, and acoustic models train from.
package finalize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"labprep/internal/corpus"
	"labprep/internal/fileutil"
	"labprep/internal/label"
	"labprep/internal/logging"
	"labprep/internal/workpool"
)

// Target is one destination directory.
type Target struct {
	// Dir is relative to out_dir.
	Dir    string
	Source label.Kind
	// FixOffset shifts every label so its first record starts at 0.
	FixOffset bool
}

// Targets lists every destination in write order.
var Targets = []Target{
	{Dir: filepath.Join("timelag", "label_phone_align"), Source: label.FullAlign},
	{Dir: filepath.Join("timelag", "label_phone_score"), Source: label.FullScore},
	{Dir: filepath.Join("duration", "label_phone_align"), Source: label.FullAlign, FixOffset: true},
	{Dir: filepath.Join("acoustic", "label_phone_align"), Source: label.FullAlign, FixOffset: true},
	{Dir: filepath.Join("acoustic", "label_phone_score"), Source: label.FullScore, FixOffset: true},
}

// Result counts the files written to one target.
type Result struct {
	Target Target
	Files  int
}

// Finalizer copies segments out of a corpus.
type Finalizer struct {
	corpus  *corpus.Corpus
	workers int
	logger  *slog.Logger
}

// New builds a finalizer over c.
func New(c *corpus.Corpus, workers int, logger *slog.Logger) *Finalizer {
	return &Finalizer{
		corpus:  c,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "finalize"),
	}
}

// Run fills every target from the full-context _seg directories.
func (f *Finalizer) Run(ctx context.Context) ([]Result, error) {
	sources := map[label.Kind][]string{}
	for _, kind := range []label.Kind{label.FullAlign, label.FullScore} {
		paths, err := corpus.ListLabels(f.corpus.SegDir(kind))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind.SegDir(), err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%s: no segmented labels; run segment first", kind.SegDir())
		}
		sources[kind] = paths
	}

	results := make([]Result, 0, len(Targets))
	for _, target := range Targets {
		n, err := f.fill(ctx, target, sources[target.Source])
		if err != nil {
			return results, err
		}
		results = append(results, Result{Target: target, Files: n})
		f.logger.Info("labels copied",
			logging.String("target", target.Dir),
			logging.String(logging.FieldStream, target.Source.String()),
			logging.Bool("offset_fixed", target.FixOffset),
			logging.Int("files", n),
		)
	}
	return results, nil
}

func (f *Finalizer) fill(ctx context.Context, target Target, paths []string) (int, error) {
	dir := filepath.Join(f.corpus.Root, target.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", target.Dir, err)
	}

	var (
		mu       sync.Mutex
		firstErr error
		written  int
	)
	err := workpool.ForEach(ctx, len(paths), workpool.Resolve(f.workers, len(paths)), func(_ context.Context, i int) {
		src := paths[i]
		dst := filepath.Join(dir, filepath.Base(src))
		err := copyLabel(src, dst, target)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s -> %s: %w", src, target.Dir, err)
			}
			return
		}
		written++
	})
	if firstErr != nil {
		return written, firstErr
	}
	return written, err
}

func copyLabel(src, dst string, target Target) error {
	if !target.FixOffset {
		return fileutil.CopyFileVerified(src, dst)
	}
	stream, err := label.Load(src, target.Source, corpus.Stem(src))
	if err != nil {
		return err
	}
	return stream.Shifted().Write(dst)
}
