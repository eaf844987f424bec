// Package trainlist splits segment names into dev, eval, and training lists.
//
// Every interval-th item goes to dev, items at interval/2 within every second
// interval go to eval, and the rest train. Selection runs over segments or,
// when grouping by song, over whole songs so all segments of a song land in
// the same list.
package trainlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"labprep/internal/fileutil"
)

// SelectBy chooses the unit of selection.
type SelectBy string

const (
	BySegment SelectBy = "segment"
	BySong    SelectBy = "song"
)

const (
	MinInterval = 5
	MaxInterval = 20
)

var (
	// ErrInterval marks an interval outside [MinInterval, MaxInterval].
	ErrInterval = errors.New("interval out of range")
	// ErrEmptyList marks a split that left dev, eval, or train empty.
	ErrEmptyList = errors.New("empty list")
)

// Lists is the result of a split. Utterances holds every name in order.
type Lists struct {
	Utterances []string
	Dev        []string
	Eval       []string
	Train      []string
}

// File names written under the list directory.
const (
	UttListFile = "utt_list.txt"
	DevFile     = "dev.list"
	EvalFile    = "eval.list"
	TrainFile   = "train_no_dev.list"
)

// SongOf returns the song stem of a segment name.
func SongOf(segment string) string {
	if i := strings.LastIndex(segment, "__seg"); i >= 0 {
		return segment[:i]
	}
	return segment
}

// Split assigns names to lists. Names are put in natural order first.
func Split(names []string, interval int, by SelectBy) (Lists, error) {
	if interval < MinInterval || interval > MaxInterval {
		return Lists{}, fmt.Errorf("%w: %d (want %d..%d)", ErrInterval, interval, MinInterval, MaxInterval)
	}
	utts := append([]string(nil), names...)
	fileutil.NaturalSort(utts)

	var units [][]string
	switch by {
	case BySegment, "":
		for _, name := range utts {
			units = append(units, []string{name})
		}
	case BySong:
		index := map[string]int{}
		for _, name := range utts {
			song := SongOf(name)
			i, ok := index[song]
			if !ok {
				i = len(units)
				index[song] = i
				units = append(units, nil)
			}
			units[i] = append(units[i], name)
		}
	default:
		return Lists{}, fmt.Errorf("unknown select_by %q", by)
	}

	lists := Lists{Utterances: utts}
	evalOffset := interval / 2
	for i, unit := range units {
		switch {
		case i%interval == 0:
			lists.Dev = append(lists.Dev, unit...)
		case i%(2*interval) == evalOffset:
			lists.Eval = append(lists.Eval, unit...)
		default:
			lists.Train = append(lists.Train, unit...)
		}
	}

	switch {
	case len(lists.Dev) == 0:
		return lists, fmt.Errorf("%w: dev", ErrEmptyList)
	case len(lists.Eval) == 0:
		return lists, fmt.Errorf("%w: eval", ErrEmptyList)
	case len(lists.Train) == 0:
		return lists, fmt.Errorf("%w: train", ErrEmptyList)
	}
	return lists, nil
}

// Write stores the four lists in dir, newline-joined without a trailing
// newline, and returns the written paths.
func Write(dir string, lists Lists) ([]string, error) {
	files := []struct {
		name  string
		items []string
	}{
		{UttListFile, lists.Utterances},
		{DevFile, lists.Dev},
		{EvalFile, lists.Eval},
		{TrainFile, lists.Train},
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create list directory: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := fileutil.WriteFileAtomic(path, []byte(strings.Join(f.items, "\n")), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Share is one row of a split summary.
type Share struct {
	Name    string
	Count   int
	Percent float64
}

// Summary returns eval, dev, and train counts with their share of the total.
func (l Lists) Summary() []Share {
	total := len(l.Utterances)
	share := func(name string, n int) Share {
		s := Share{Name: name, Count: n}
		if total > 0 {
			s.Percent = float64(n) * 100 / float64(total)
		}
		return s
	}
	return []Share{
		share("eval", len(l.Eval)),
		share("dev", len(l.Dev)),
		share("train", len(l.Train)),
	}
}
