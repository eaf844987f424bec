package label

// Group holds the four parallel streams of a song or of a segment, indexed by
// Kind. All four are expected to share one record count.
type Group [NumKinds]Stream

// Counts returns the record count of every stream in kind order.
func (g Group) Counts() [NumKinds]int {
	var counts [NumKinds]int
	for i := range g {
		counts[i] = len(g[i].Records)
	}
	return counts
}

// Aligned reports whether all streams have the same record count.
func (g Group) Aligned() bool {
	counts := g.Counts()
	for _, c := range counts[1:] {
		if c != counts[0] {
			return false
		}
	}
	return true
}

// Len returns the record count of the reference mono_score stream.
func (g Group) Len() int {
	return len(g[MonoScore].Records)
}

// Empty reports whether the reference stream has no records.
func (g Group) Empty() bool {
	return g.Len() == 0
}

// Slice returns records [lo, hi) of every stream. The result does not alias g.
func (g Group) Slice(lo, hi int) Group {
	var out Group
	for i := range g {
		out[i] = Stream{
			Song:    g[i].Song,
			Kind:    g[i].Kind,
			Records: append([]Record(nil), g[i].Records[lo:hi]...),
		}
	}
	return out
}

// Append extends every stream of g with the matching stream of other.
func (g *Group) Append(other Group) {
	for i := range g {
		if g[i].Song == "" {
			g[i].Song = other[i].Song
			g[i].Kind = other[i].Kind
		}
		g[i].Records = append(g[i].Records, other[i].Records...)
	}
}

// Song is one training utterance: four parallel streams sharing a name.
type Song struct {
	Name    string
	Streams Group
}

// Stream returns the stream of the given kind.
func (s *Song) Stream(kind Kind) *Stream {
	return &s.Streams[kind]
}
