// Package corpus maps an out_dir onto label streams: it pairs the four
// *_round input directories song by song, loads and rewrites streams, and
// writes segments into the parallel *_round_seg directories.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"labprep/internal/fileutil"
	"labprep/internal/label"
	"labprep/internal/segment"
	"labprep/internal/workpool"
)

// ErrLayout marks input directories whose files cannot be paired.
var ErrLayout = errors.New("label directories do not match")

// LabelExt is the extension of label files.
const LabelExt = ".lab"

// Entry is one song's four input files, indexed by label.Kind.
type Entry struct {
	Name  string
	Paths [label.NumKinds]string
}

// Corpus reads and writes labels under a root directory.
type Corpus struct {
	Root string
}

// New returns a corpus rooted at root.
func New(root string) *Corpus {
	return &Corpus{Root: root}
}

// InputDir is the directory holding whole-song labels of kind.
func (c *Corpus) InputDir(kind label.Kind) string {
	return filepath.Join(c.Root, kind.Dir())
}

// SegDir is the directory receiving segmented labels of kind.
func (c *Corpus) SegDir(kind label.Kind) string {
	return filepath.Join(c.Root, kind.SegDir())
}

// Stem returns the NFC-normalized file name without its .lab extension.
func Stem(path string) string {
	return norm.NFC.String(strings.TrimSuffix(filepath.Base(path), LabelExt))
}

// ListLabels returns the .lab files directly inside dir in natural order.
func ListLabels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read label directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), LabelExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	fileutil.NaturalSort(names)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// Discover pairs the four input directories. Every directory must hold the
// same number of files with the same stems.
func (c *Corpus) Discover() ([]Entry, error) {
	var lists [label.NumKinds][]string
	for _, kind := range label.Kinds {
		paths, err := ListLabels(c.InputDir(kind))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		lists[kind] = paths
	}

	count := len(lists[label.MonoScore])
	for _, kind := range label.Kinds {
		if len(lists[kind]) != count {
			return nil, fmt.Errorf("%w: %s has %d files, %s has %d",
				ErrLayout, label.MonoScore.Dir(), count, kind.Dir(), len(lists[kind]))
		}
	}

	entries := make([]Entry, count)
	for i := 0; i < count; i++ {
		name := Stem(lists[label.MonoScore][i])
		entries[i].Name = name
		for _, kind := range label.Kinds {
			if stem := Stem(lists[kind][i]); stem != name {
				return nil, fmt.Errorf("%w: %q in %s pairs with %q in %s",
					ErrLayout, name, label.MonoScore.Dir(), stem, kind.Dir())
			}
			entries[i].Paths[kind] = lists[kind][i]
		}
	}
	return entries, nil
}

// LoadSong reads all four streams of an entry.
func (c *Corpus) LoadSong(entry Entry) (label.Song, error) {
	song := label.Song{Name: entry.Name}
	for _, kind := range label.Kinds {
		stream, err := label.Load(entry.Paths[kind], kind, entry.Name)
		if err != nil {
			return label.Song{}, err
		}
		song.Streams[kind] = stream
	}
	return song, nil
}

// LoadAll reads every entry using up to workers goroutines. Songs keep the
// order of entries. The first load error is returned.
func (c *Corpus) LoadAll(ctx context.Context, entries []Entry, workers int) ([]label.Song, error) {
	songs := make([]label.Song, len(entries))
	var (
		mu       sync.Mutex
		firstErr error
	)
	err := workpool.ForEach(ctx, len(entries), workpool.Resolve(workers, len(entries)), func(_ context.Context, i int) {
		song, err := c.LoadSong(entries[i])
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		songs[i] = song
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	return songs, nil
}

// PersistStream rewrites a stream at the path it was loaded from.
func (c *Corpus) PersistStream(_ context.Context, stream label.Stream) error {
	if stream.Path == "" {
		return fmt.Errorf("persist %s/%s: stream has no path", stream.Song, stream.Kind)
	}
	return stream.Write(stream.Path)
}

// WriteSegments writes every segment into the four _seg directories and
// returns the written segment names. Segment files left by an earlier run of
// the same songs that this run no longer produces are removed afterwards.
func (c *Corpus) WriteSegments(segments []segment.Segment) ([]string, error) {
	if err := c.EnsureSegDirs(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(segments))
	keep := make(map[string]map[string]bool)
	for _, seg := range segments {
		name := seg.Name()
		for _, kind := range label.Kinds {
			path := filepath.Join(c.SegDir(kind), name+LabelExt)
			if err := seg.Streams[kind].Write(path); err != nil {
				return names, err
			}
		}
		names = append(names, name)
		if keep[seg.Song] == nil {
			keep[seg.Song] = make(map[string]bool)
		}
		keep[seg.Song][name] = true
	}
	for song, current := range keep {
		if _, err := c.pruneSegments(song, current); err != nil {
			return names, err
		}
	}
	return names, nil
}

// RemoveSegments deletes every segment file of song from the _seg
// directories and returns how many files were removed.
func (c *Corpus) RemoveSegments(song string) (int, error) {
	return c.pruneSegments(song, nil)
}

func (c *Corpus) pruneSegments(song string, keep map[string]bool) (int, error) {
	removed := 0
	for _, kind := range label.Kinds {
		entries, err := os.ReadDir(c.SegDir(kind))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("list %s: %w", kind.SegDir(), err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != LabelExt {
				continue
			}
			stem := Stem(entry.Name())
			if keep[stem] || !isSegmentOf(stem, song) {
				continue
			}
			if err := os.Remove(filepath.Join(c.SegDir(kind), entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
				return removed, fmt.Errorf("remove stale segment: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}

// isSegmentOf reports whether stem is song followed by "__seg" and an index.
func isSegmentOf(stem, song string) bool {
	index, ok := strings.CutPrefix(stem, song+"__seg")
	if !ok || index == "" {
		return false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// EnsureSegDirs creates the four output directories.
func (c *Corpus) EnsureSegDirs() error {
	for _, kind := range label.Kinds {
		if err := os.MkdirAll(c.SegDir(kind), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", kind.SegDir(), err)
		}
	}
	return nil
}

// SegmentNames lists the segment stems found in the mono_score _seg
// directory in natural order.
func (c *Corpus) SegmentNames() ([]string, error) {
	paths, err := ListLabels(c.SegDir(label.MonoScore))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = Stem(path)
	}
	return names, nil
}
