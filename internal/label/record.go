package label

import (
	"fmt"
	"strings"
)

// Ticks is a time offset in 100-nanosecond units.
type Ticks int64

const (
	// TicksPerSecond converts seconds to ticks.
	TicksPerSecond Ticks = 10_000_000
	// TicksPerMillisecond converts milliseconds to ticks.
	TicksPerMillisecond Ticks = 10_000
)

// Milliseconds reports t in milliseconds.
func (t Ticks) Milliseconds() float64 {
	return float64(t) / float64(TicksPerMillisecond)
}

// Record is one phoneme interval. Context holds the full-context label text for
// full_* streams and is empty for mono_* streams; it is never interpreted.
type Record struct {
	Start   Ticks
	End     Ticks
	Symbol  string
	Context string
}

// Duration returns End - Start.
func (r Record) Duration() Ticks {
	return r.End - r.Start
}

// IsFull reports whether the record carries a full-context payload.
func (r Record) IsFull() bool {
	return r.Context != ""
}

// Text returns the label text written to disk for this record.
func (r Record) Text() string {
	if r.Context != "" {
		return r.Context
	}
	return r.Symbol
}

func (r Record) String() string {
	return fmt.Sprintf("%d %d %s", r.Start, r.End, r.Symbol)
}

// CentrePhoneme extracts p3 from an HTS full-context label
// ("p1^p2-p3+p4=p5/A:..."). Text without the "-...+" frame is returned as is.
func CentrePhoneme(context string) string {
	minus := strings.IndexByte(context, '-')
	if minus < 0 {
		return context
	}
	rest := context[minus+1:]
	plus := strings.IndexByte(rest, '+')
	if plus < 0 {
		return context
	}
	return rest[:plus]
}
