package validate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"labprep/internal/label"
)

// DriftStatistics summarizes aligned-minus-score vowel duration differences
// pooled over a whole batch. Values are ticks truncated toward zero.
type DriftStatistics struct {
	Median   label.Ticks
	Mean     label.Ticks
	PopStdev label.Ticks
	Samples  int
}

// Band returns the closed tolerance interval mean ± k·stdev.
func (d DriftStatistics) Band(k int64) (lower, upper label.Ticks) {
	spread := label.Ticks(k) * d.PopStdev
	return d.Mean - spread, d.Mean + spread
}

// Check names a drift check.
type Check string

const (
	CheckLeadingSilence Check = "leading_silence_offset"
	CheckVowelDuration  Check = "vowel_duration"
)

// Neighbour is a phoneme adjacent to a flagged one, kept for triage.
type Neighbour struct {
	Symbol   string
	Duration label.Ticks
}

// Finding is one advisory drift violation.
type Finding struct {
	Check      Check
	Song       string
	AlignPath  string
	ScorePath  string
	Index      int
	Symbol     string
	AlignTicks label.Ticks
	ScoreTicks label.Ticks
	Delta      label.Ticks
	Lower      label.Ticks
	Upper      label.Ticks
	K          int64
	Previous   *Neighbour
	Next       *Neighbour
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s[%d] %s: delta %.0f ms outside [%.0f, %.0f] ms",
		f.Check, f.Song, f.Index, f.Symbol,
		f.Delta.Milliseconds(), f.Lower.Milliseconds(), f.Upper.Milliseconds())
}

// NormalizeLeadingSilence forces the first record of an aligned stream to
// start at tick 0. It reports whether the stream changed.
func NormalizeLeadingSilence(align *label.Stream) bool {
	if len(align.Records) == 0 || align.Records[0].Start == 0 {
		return false
	}
	align.Records[0].Start = 0
	return true
}

// CheckSymbolParity compares symbol sequences position by position. On
// mismatch it returns the first differing index and both symbols (empty when
// one stream is shorter).
func CheckSymbolParity(align, score label.Stream) (Mismatch, bool) {
	na, ns := len(align.Records), len(score.Records)
	n := min(na, ns)
	index := -1
	for i := 0; i < n; i++ {
		if align.Records[i].Symbol != score.Records[i].Symbol {
			index = i
			break
		}
	}
	if index < 0 && na == ns {
		return Mismatch{}, true
	}
	if index < 0 {
		index = n
	}

	m := Mismatch{
		Song:       songName(align, score),
		AlignPath:  align.Path,
		ScorePath:  score.Path,
		Index:      index,
		AlignCount: na,
		ScoreCount: ns,
	}
	if index < na {
		m.AlignSymbol = align.Records[index].Symbol
	}
	if index < ns {
		m.ScoreSymbol = score.Records[index].Symbol
	}
	return m, false
}

// driftIndices yields every index i whose vowel duration takes part in drift
// checks: a vowel in both streams, not the final record, and not followed by
// a pause in either stream.
func driftIndices(align, score label.Stream, vowels, pauses Symbols, yield func(i int)) {
	n := min(len(align.Records), len(score.Records))
	for i := 0; i < n-1; i++ {
		if !vowels.Has(score.Records[i].Symbol) || !vowels.Has(align.Records[i].Symbol) {
			continue
		}
		if pauses.Has(align.Records[i+1].Symbol) || pauses.Has(score.Records[i+1].Symbol) {
			continue
		}
		yield(i)
	}
}

// ComputeDriftStatistics pools aligned-minus-score vowel duration differences
// over every song pair and returns their median, mean, and population
// standard deviation.
func ComputeDriftStatistics(aligns, scores []label.Stream, vowels, pauses Symbols) (DriftStatistics, error) {
	if len(aligns) != len(scores) {
		return DriftStatistics{}, fmt.Errorf("%w: %d aligned streams vs %d score streams", ErrStructuralMismatch, len(aligns), len(scores))
	}

	var diffs []float64
	for s := range aligns {
		align, score := aligns[s], scores[s]
		driftIndices(align, score, vowels, pauses, func(i int) {
			diffs = append(diffs, float64(align.Records[i].Duration()-score.Records[i].Duration()))
		})
	}
	if len(diffs) == 0 {
		return DriftStatistics{}, ErrNoDriftSamples
	}

	mean, std := stat.PopMeanStdDev(diffs, nil)
	return DriftStatistics{
		Median:   label.Ticks(median(diffs)),
		Mean:     label.Ticks(mean),
		PopStdev: label.Ticks(std),
		Samples:  len(diffs),
	}, nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CheckLeadingSilenceOffset compares the first record's duration in both
// streams against the band for strictness (k = 5/6/7, medium by default).
func CheckLeadingSilenceOffset(align, score label.Stream, stats DriftStatistics, strictness Strictness) (Finding, bool) {
	if len(align.Records) == 0 || len(score.Records) == 0 {
		return Finding{}, true
	}
	k := strictness.OffsetK()
	lower, upper := stats.Band(k)
	a, s := align.Records[0].Duration(), score.Records[0].Duration()
	delta := a - s
	if delta >= lower && delta <= upper {
		return Finding{}, true
	}
	return Finding{
		Check:      CheckLeadingSilence,
		Song:       songName(align, score),
		AlignPath:  align.Path,
		ScorePath:  score.Path,
		Index:      0,
		Symbol:     align.Records[0].Symbol,
		AlignTicks: a,
		ScoreTicks: s,
		Delta:      delta,
		Lower:      lower,
		Upper:      upper,
		K:          k,
	}, false
}

// CheckVowelDurationConsistency flags every vowel whose duration delta leaves
// the band for strictness (k = 4/5/6, lenient by default).
func CheckVowelDurationConsistency(align, score label.Stream, stats DriftStatistics, strictness Strictness, vowels, pauses Symbols) ([]Finding, bool) {
	k := strictness.VowelK()
	lower, upper := stats.Band(k)

	var findings []Finding
	driftIndices(align, score, vowels, pauses, func(i int) {
		a, s := align.Records[i].Duration(), score.Records[i].Duration()
		delta := a - s
		if delta >= lower && delta <= upper {
			return
		}
		f := Finding{
			Check:      CheckVowelDuration,
			Song:       songName(align, score),
			AlignPath:  align.Path,
			ScorePath:  score.Path,
			Index:      i,
			Symbol:     align.Records[i].Symbol,
			AlignTicks: a,
			ScoreTicks: s,
			Delta:      delta,
			Lower:      lower,
			Upper:      upper,
			K:          k,
			Next:       &Neighbour{Symbol: align.Records[i+1].Symbol, Duration: align.Records[i+1].Duration()},
		}
		if i > 0 {
			f.Previous = &Neighbour{Symbol: align.Records[i-1].Symbol, Duration: align.Records[i-1].Duration()}
		}
		findings = append(findings, f)
	})
	return findings, len(findings) == 0
}

func songName(align, score label.Stream) string {
	if align.Song != "" {
		return align.Song
	}
	return score.Song
}
