package trainlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func segmentNames(songs, perSong int) []string {
	var names []string
	for s := 0; s < songs; s++ {
		for i := 0; i < perSong; i++ {
			names = append(names, fmt.Sprintf("song%d__seg%02d", s, i))
		}
	}
	return names
}

func TestSplitBySegment(t *testing.T) {
	names := segmentNames(1, 30)
	lists, err := Split(names, 11, BySegment)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	wantDev := []string{"song0__seg00", "song0__seg11", "song0__seg22"}
	if !reflect.DeepEqual(lists.Dev, wantDev) {
		t.Fatalf("dev = %v, want %v", lists.Dev, wantDev)
	}
	if !reflect.DeepEqual(lists.Eval, []string{"song0__seg05", "song0__seg27"}) {
		t.Fatalf("eval = %v", lists.Eval)
	}
	if got := len(lists.Dev) + len(lists.Eval) + len(lists.Train); got != len(names) {
		t.Fatalf("lists cover %d names, want %d", got, len(names))
	}
}

func TestSplitBySongKeepsSongsTogether(t *testing.T) {
	names := segmentNames(12, 3)
	lists, err := Split(names, 5, BySong)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	// songs 0, 5, 10 -> dev; song 2 -> eval
	if len(lists.Dev) != 9 || len(lists.Eval) != 3 || len(lists.Train) != 24 {
		t.Fatalf("unexpected sizes: dev %d eval %d train %d", len(lists.Dev), len(lists.Eval), len(lists.Train))
	}
	for _, name := range lists.Eval {
		if SongOf(name) != "song2" {
			t.Fatalf("eval contains %s", name)
		}
	}
}

func TestSplitNaturalOrder(t *testing.T) {
	names := []string{"s__seg10", "s__seg2", "s__seg1"}
	for i := 3; i < 12; i++ {
		if i != 10 {
			names = append(names, fmt.Sprintf("s__seg%d", i))
		}
	}
	lists, err := Split(names, 5, BySegment)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if lists.Utterances[0] != "s__seg1" || lists.Utterances[9] != "s__seg10" {
		t.Fatalf("not naturally ordered: %v", lists.Utterances)
	}
}

func TestSplitErrors(t *testing.T) {
	if _, err := Split(segmentNames(1, 30), 4, BySegment); !errors.Is(err, ErrInterval) {
		t.Fatalf("expected ErrInterval, got %v", err)
	}
	if _, err := Split(segmentNames(1, 30), 21, BySegment); !errors.Is(err, ErrInterval) {
		t.Fatalf("expected ErrInterval, got %v", err)
	}
	if _, err := Split(segmentNames(1, 2), 5, BySegment); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("expected ErrEmptyList, got %v", err)
	}
	if _, err := Split(segmentNames(1, 30), 5, "album"); err == nil {
		t.Fatal("expected error for unknown select_by")
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "list")
	lists := Lists{
		Utterances: []string{"a", "b", "c"},
		Dev:        []string{"a"},
		Eval:       []string{"b"},
		Train:      []string{"c"},
	}
	paths, err := Write(dir, lists)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("paths = %v", paths)
	}
	data, err := os.ReadFile(filepath.Join(dir, UttListFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "a\nb\nc" {
		t.Fatalf("utt list = %q", data)
	}
}

func TestSummary(t *testing.T) {
	lists := Lists{Utterances: make([]string, 4), Dev: []string{"a"}, Eval: []string{"b"}, Train: []string{"c", "d"}}
	got := lists.Summary()
	if got[2].Name != "train" || got[2].Count != 2 || got[2].Percent != 50 {
		t.Fatalf("summary = %+v", got)
	}
}
