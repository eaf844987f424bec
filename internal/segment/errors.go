package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch marks parallel streams with differing record counts.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrBoundaryViolation marks a mono_score stream that does not begin and
	// end with a pause.
	ErrBoundaryViolation = errors.New("boundary violation")
	// ErrSegmentTooShort marks an emitted segment with one record or none.
	ErrSegmentTooShort = errors.New("segment too short")
)

// SegmentError reports a failure for one song. Index is the offending segment,
// or -1 when the song failed its pre-conditions.
type SegmentError struct {
	Song   string
	Index  int
	Counts [4]int
	Err    error
}

func (e *SegmentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("segment %s: %v", e.Song, e.Err)
	}
	return fmt.Sprintf("segment %s: segment %02d (counts %v): %v", e.Song, e.Index, e.Counts, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
