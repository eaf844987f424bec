package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"labprep/internal/label"
	"labprep/internal/workpool"
)

// FullToMono derives every mono_score label from its full_score label and
// returns the number of files written.
func (c *Corpus) FullToMono(ctx context.Context, workers int) (int, error) {
	paths, err := ListLabels(c.InputDir(label.FullScore))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", label.FullScore, err)
	}
	outDir := c.InputDir(label.MonoScore)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", label.MonoScore.Dir(), err)
	}

	var written atomic.Int64
	err = forEachPath(ctx, paths, workers, func(path string) error {
		full, err := label.Load(path, label.FullScore, Stem(path))
		if err != nil {
			return err
		}
		if err := full.AsMono().Write(filepath.Join(outDir, filepath.Base(path))); err != nil {
			return err
		}
		written.Add(1)
		return nil
	})
	return int(written.Load()), err
}

// ExpandLabelPaths resolves files and directories into .lab file paths.
// Directories are searched recursively.
func ExpandLabelPaths(inputs []string) ([]string, error) {
	var out []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !strings.EqualFold(filepath.Ext(input), LabelExt) {
				return nil, fmt.Errorf("%s: not a %s file", input, LabelExt)
			}
			out = append(out, input)
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), LabelExt) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReverseFiles mirrors each label file in time and overwrites it.
func ReverseFiles(ctx context.Context, paths []string, workers int) error {
	return forEachPath(ctx, paths, workers, func(path string) error {
		// Full kind keeps each line's text verbatim for mono and full files alike.
		stream, err := label.Load(path, label.FullAlign, Stem(path))
		if err != nil {
			return err
		}
		return stream.Reversed().Write(path)
	})
}

func forEachPath(ctx context.Context, paths []string, workers int, fn func(path string) error) error {
	var (
		mu       sync.Mutex
		firstErr error
	)
	err := workpool.ForEach(ctx, len(paths), workpool.Resolve(workers, len(paths)), func(_ context.Context, i int) {
		if err := fn(paths[i]); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	})
	if firstErr != nil {
		return firstErr
	}
	return err
}
