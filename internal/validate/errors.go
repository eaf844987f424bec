package validate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructuralMismatch marks paired streams whose phoneme counts or
	// symbols differ.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrNoDriftSamples is returned when no vowel qualifies for the pooled
	// drift statistics.
	ErrNoDriftSamples = errors.New("no vowel samples for drift statistics")
)

// Mismatch describes the first difference between an aligned stream and its
// score counterpart.
type Mismatch struct {
	Song        string
	AlignPath   string
	ScorePath   string
	Index       int
	AlignSymbol string
	ScoreSymbol string
	AlignCount  int
	ScoreCount  int
}

func (m Mismatch) String() string {
	if m.AlignCount != m.ScoreCount {
		return fmt.Sprintf("%s: phoneme count differs (align %d, score %d), first difference at %d (align %q, score %q)",
			m.Song, m.AlignCount, m.ScoreCount, m.Index, m.AlignSymbol, m.ScoreSymbol)
	}
	return fmt.Sprintf("%s: symbol %d differs (align %q, score %q)", m.Song, m.Index, m.AlignSymbol, m.ScoreSymbol)
}

// BatchError aggregates every structural mismatch found in one batch.
type BatchError struct {
	Mismatches []Mismatch
}

// Songs lists the failing song names in batch order.
func (e *BatchError) Songs() []string {
	names := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		names[i] = m.Song
	}
	return names
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: aligned and score labels disagree in %d song(s): %s",
		ErrStructuralMismatch, len(e.Mismatches), strings.Join(e.Songs(), ", "))
}

func (e *BatchError) Unwrap() error {
	return ErrStructuralMismatch
}
