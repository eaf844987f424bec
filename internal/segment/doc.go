// Package segment splits the four parallel label streams of a song into
// training-sized segments at pause boundaries.
//
// Pause positions are always read from the mono_score stream; the other three
// streams are cut at the same indices. Splitting runs in two phases. The fine
// split emits one piece per pair of consecutive pauses, each starting with its
// pause. Coalescing then merges pieces left to right: a pause longer than
// MaxPauseDuration is a hard cut and is dropped, a piece that would push the
// open segment past MaxSegmentLength starts a new segment with its pause kept
// as lead-in, and anything else is appended.
package segment
