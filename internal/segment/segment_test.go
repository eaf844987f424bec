package segment

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"labprep/internal/label"
)

type phone struct {
	symbol   string
	duration label.Ticks
}

func makeSong(name string, phones ...phone) label.Song {
	var g label.Group
	for _, kind := range label.Kinds {
		s := label.Stream{Song: name, Kind: kind}
		var at label.Ticks
		for i, p := range phones {
			rec := label.Record{Start: at, End: at + p.duration, Symbol: p.symbol}
			if kind.IsFull() {
				rec.Context = fmt.Sprintf("xx^xx-%s+xx=xx/A:%d", p.symbol, i)
			}
			s.Records = append(s.Records, rec)
			at += p.duration
		}
		g[kind] = s
	}
	return label.Song{Name: name, Streams: g}
}

var boundarySong = []phone{
	{"pau", 50000}, {"a", 10000}, {"k", 5000}, {"a", 10000},
	{"pau", 60000}, {"pau", 5000}, {"i", 8000}, {"pau", 40000},
}

func durations(s label.Stream) []label.Ticks {
	out := make([]label.Ticks, len(s.Records))
	for i, rec := range s.Records {
		out[i] = rec.Duration()
	}
	return out
}

func TestSplitLongPauseCut(t *testing.T) {
	song := makeSong("song", boundarySong...)
	segs, err := Split(song, Config{MaxPauseDuration: 55000, MaxSegmentLength: 1_000_000})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if got := segs[0].Streams[label.MonoScore].Symbols(); !reflect.DeepEqual(got, []string{"pau", "a", "k", "a"}) {
		t.Fatalf("segment 0 symbols = %v", got)
	}
	if got := segs[1].Streams[label.MonoScore].Symbols(); !reflect.DeepEqual(got, []string{"pau", "i"}) {
		t.Fatalf("segment 1 symbols = %v", got)
	}
	for _, seg := range segs {
		for _, kind := range label.Kinds {
			for _, d := range durations(seg.Streams[kind]) {
				if d == 60000 {
					t.Fatalf("long pause leaked into %s %s", seg.Name(), kind)
				}
			}
		}
	}
	if segs[1].Name() != "song__seg01" {
		t.Fatalf("name = %q", segs[1].Name())
	}
}

func TestSplitLengthCutRetainsPause(t *testing.T) {
	song := makeSong("song", boundarySong...)
	segs, err := Split(song, Config{MaxPauseDuration: 1_000_000, MaxSegmentLength: 139_999})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if got := durations(segs[0].Streams[label.MonoScore]); !reflect.DeepEqual(got, []label.Ticks{50000, 10000, 5000, 10000, 60000}) {
		t.Fatalf("segment 0 durations = %v", got)
	}
	first := segs[1].Streams[label.MonoScore].Records[0]
	if first.Symbol != "pau" || first.Duration() != 5000 {
		t.Fatalf("segment 1 should start with the retained short pause, got %+v", first)
	}
}

func TestSplitKeepsFullContext(t *testing.T) {
	song := makeSong("song", boundarySong...)
	segs, err := Split(song, Config{MaxPauseDuration: 55000, MaxSegmentLength: 1_000_000})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	rec := segs[1].Streams[label.FullAlign].Records[1]
	if rec.Context != "xx^xx-i+xx=xx/A:6" {
		t.Fatalf("full context not carried through: %+v", rec)
	}
	if segs[1].Streams[label.FullAlign].Kind != label.FullAlign || segs[1].Streams[label.FullAlign].Song != "song" {
		t.Fatalf("stream identity lost: %+v", segs[1].Streams[label.FullAlign])
	}
}

func TestSplitPreconditions(t *testing.T) {
	cfg := Config{MaxPauseDuration: 10, MaxSegmentLength: 1000}

	mismatched := makeSong("counts", phone{"pau", 1}, phone{"a", 1}, phone{"pau", 1})
	mismatched.Streams[label.FullAlign].Records = mismatched.Streams[label.FullAlign].Records[:2]

	tests := []struct {
		name string
		song label.Song
		want error
	}{
		{"count mismatch", mismatched, ErrStructuralMismatch},
		{"first not pause", makeSong("first", phone{"a", 1}, phone{"b", 1}, phone{"pau", 1}), ErrBoundaryViolation},
		{"last not pause", makeSong("last", phone{"pau", 1}, phone{"a", 1}, phone{"b", 1}), ErrBoundaryViolation},
		{"empty", makeSong("empty"), ErrBoundaryViolation},
		{"single pause", makeSong("single", phone{"pau", 1}), ErrSegmentTooShort},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segs, err := Split(tc.song, cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if segs != nil {
				t.Fatalf("no segments expected on failure, got %d", len(segs))
			}
			var segErr *SegmentError
			if !errors.As(err, &segErr) || segErr.Song != tc.song.Name {
				t.Fatalf("expected *SegmentError naming %q, got %v", tc.song.Name, err)
			}
		})
	}
}

func TestSplitTrailingTinySegment(t *testing.T) {
	song := makeSong("tiny",
		phone{"pau", 100}, phone{"a", 100}, phone{"b", 100},
		phone{"pau", 100}, phone{"c", 100}, phone{"pau", 100})
	_, err := Split(song, Config{MaxPauseDuration: 50, MaxSegmentLength: 10_000})
	if !errors.Is(err, ErrSegmentTooShort) {
		t.Fatalf("expected ErrSegmentTooShort, got %v", err)
	}
	var segErr *SegmentError
	if !errors.As(err, &segErr) || segErr.Index != 1 {
		t.Fatalf("expected failure at segment 1, got %v", err)
	}
}

func TestSplitCustomPauseSymbols(t *testing.T) {
	song := makeSong("br", phone{"br", 100}, phone{"a", 100}, phone{"i", 100}, phone{"br", 100})
	segs, err := Split(song, Config{MaxPauseDuration: 1000, MaxSegmentLength: 10_000, PauseSymbols: []string{"br"}})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 1 || segs[0].Streams.Len() != 3 {
		t.Fatalf("unexpected segments: %+v", segs)
	}
}

func randomSong(r *rand.Rand, name string) label.Song {
	symbols := []string{"a", "i", "u", "k", "s", "N", "pau", "sil"}
	phones := []phone{{"pau", label.Ticks(r.Intn(100000) + 1)}}
	for n := r.Intn(40) + 1; n > 0; n-- {
		phones = append(phones, phone{symbols[r.Intn(len(symbols))], label.Ticks(r.Intn(100000))})
	}
	phones = append(phones, phone{"sil", label.Ticks(r.Intn(100000))})
	return makeSong(name, phones...)
}

func TestSplitProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pauses := Config{}.pauses()
	for i := 0; i < 500; i++ {
		song := randomSong(r, fmt.Sprintf("rand%03d", i))
		cfg := Config{
			MaxPauseDuration: label.Ticks(r.Intn(120000)),
			MaxSegmentLength: label.Ticks(r.Intn(1_000_000) + 1),
		}

		pieces := fineSplit(song.Streams, pauses)
		if got, want := len(pieces), len(pauseIndices(song.Streams, pauses))-1; got != want {
			t.Fatalf("%s: fine split produced %d pieces, want %d", song.Name, got, want)
		}

		segs, err := Split(song, cfg)
		if err != nil {
			if !errors.Is(err, ErrSegmentTooShort) {
				t.Fatalf("%s: unexpected error %v", song.Name, err)
			}
			continue
		}
		for _, seg := range segs {
			counts := seg.Streams.Counts()
			for _, c := range counts {
				if c != counts[0] || c <= 1 {
					t.Fatalf("%s: bad counts %v", seg.Name(), counts)
				}
			}
		}

		again, err := Split(song, cfg)
		if err != nil || !reflect.DeepEqual(segs, again) {
			t.Fatalf("%s: second split differs", song.Name)
		}
	}
}

func TestSegmentName(t *testing.T) {
	if got := SegmentName("natsumatsuri", 3); got != "natsumatsuri__seg03" {
		t.Fatalf("SegmentName = %q", got)
	}
	if got := SegmentName("x", 123); got != "x__seg123" {
		t.Fatalf("SegmentName = %q", got)
	}
}
