package segment

import (
	"fmt"

	"labprep/internal/label"
)

// DefaultPauseSymbols are the pause symbols used when a Config names none.
var DefaultPauseSymbols = []string{"pau", "sil"}

// Config holds segmentation thresholds in ticks.
type Config struct {
	MaxPauseDuration label.Ticks
	MaxSegmentLength label.Ticks
	PauseSymbols     []string
}

func (c Config) pauses() map[string]struct{} {
	symbols := c.PauseSymbols
	if len(symbols) == 0 {
		symbols = DefaultPauseSymbols
	}
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}

// Segment is one emitted chunk of a song.
type Segment struct {
	Song    string
	Index   int
	Streams label.Group
}

// Name returns the file stem of the segment, e.g. "song__seg03".
func (s Segment) Name() string {
	return SegmentName(s.Song, s.Index)
}

// SegmentName formats the file stem for segment index of song.
func SegmentName(song string, index int) string {
	return fmt.Sprintf("%s__seg%02d", song, index)
}

// Split cuts song into segments. Either every segment passes its
// post-conditions and all are returned, or a *SegmentError is returned and
// nothing is.
func Split(song label.Song, cfg Config) ([]Segment, error) {
	pauses := cfg.pauses()
	if err := checkSong(song, pauses); err != nil {
		return nil, err
	}

	groups := coalesce(fineSplit(song.Streams, pauses), cfg)

	segments := make([]Segment, len(groups))
	for i, g := range groups {
		if !g.Aligned() {
			return nil, &SegmentError{Song: song.Name, Index: i, Counts: g.Counts(), Err: ErrStructuralMismatch}
		}
		if g.Len() <= 1 {
			return nil, &SegmentError{Song: song.Name, Index: i, Counts: g.Counts(), Err: ErrSegmentTooShort}
		}
		for k := range g {
			g[k].Song = song.Name
			g[k].Kind = label.Kind(k)
		}
		segments[i] = Segment{Song: song.Name, Index: i, Streams: g}
	}
	return segments, nil
}

func checkSong(song label.Song, pauses map[string]struct{}) error {
	if !song.Streams.Aligned() {
		return &SegmentError{
			Song:  song.Name,
			Index: -1,
			Err:   fmt.Errorf("%w: record counts %v", ErrStructuralMismatch, song.Streams.Counts()),
		}
	}
	records := song.Streams[label.MonoScore].Records
	if len(records) == 0 {
		return &SegmentError{Song: song.Name, Index: -1, Err: fmt.Errorf("%w: mono_score is empty", ErrBoundaryViolation)}
	}
	if first := records[0].Symbol; !isPause(pauses, first) {
		return &SegmentError{Song: song.Name, Index: -1, Err: fmt.Errorf("%w: first symbol %q is not a pause", ErrBoundaryViolation, first)}
	}
	if last := records[len(records)-1].Symbol; !isPause(pauses, last) {
		return &SegmentError{Song: song.Name, Index: -1, Err: fmt.Errorf("%w: last symbol %q is not a pause", ErrBoundaryViolation, last)}
	}
	return nil
}

func isPause(pauses map[string]struct{}, symbol string) bool {
	_, ok := pauses[symbol]
	return ok
}

// pauseIndices lists every mono_score index holding a pause symbol.
func pauseIndices(streams label.Group, pauses map[string]struct{}) []int {
	var idx []int
	for i, rec := range streams[label.MonoScore].Records {
		if isPause(pauses, rec.Symbol) {
			idx = append(idx, i)
		}
	}
	return idx
}

// fineSplit returns one group per consecutive pause pair [p_i, p_i+1). Records
// before the first pause and from the last pause on are not part of any piece.
func fineSplit(streams label.Group, pauses map[string]struct{}) []label.Group {
	idx := pauseIndices(streams, pauses)
	if len(idx) < 2 {
		return nil
	}
	pieces := make([]label.Group, 0, len(idx)-1)
	for i := 0; i+1 < len(idx); i++ {
		pieces = append(pieces, streams.Slice(idx[i], idx[i+1]))
	}
	return pieces
}

// coalesce merges fine pieces into segments. The final accumulator is always
// flushed, even when empty, so the caller's post-conditions see it.
func coalesce(pieces []label.Group, cfg Config) []label.Group {
	var acc accumulator
	for _, piece := range pieces {
		lead := piece[label.MonoScore].Records[0].Duration()
		switch {
		case lead > cfg.MaxPauseDuration:
			acc.flush()
			acc.reset(piece.Slice(1, piece.Len()))
		case acc.duration()+totalDuration(piece) > cfg.MaxSegmentLength:
			acc.flush()
			acc.reset(piece)
		default:
			acc.extend(piece)
		}
	}
	acc.flushFinal()
	return acc.done
}

func totalDuration(g label.Group) label.Ticks {
	return g[label.MonoScore].TotalDuration()
}

// accumulator is the open segment being built during coalescing.
type accumulator struct {
	open label.Group
	done []label.Group
}

func (a *accumulator) duration() label.Ticks {
	return totalDuration(a.open)
}

func (a *accumulator) extend(piece label.Group) {
	a.open.Append(piece)
}

// flush emits the open segment if it holds any records.
func (a *accumulator) flush() {
	if a.open.Empty() {
		return
	}
	a.done = append(a.done, a.open)
	a.open = label.Group{}
}

// flushFinal emits the open segment unconditionally.
func (a *accumulator) flushFinal() {
	a.done = append(a.done, a.open)
	a.open = label.Group{}
}

func (a *accumulator) reset(piece label.Group) {
	a.open = piece
}
