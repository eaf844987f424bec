// Package validate detects inconsistencies between score-derived and
// human-aligned mono label streams across a batch of songs.
//
// Structural problems (phoneme count or symbol differences) are fatal: the
// whole batch is checked first and a single BatchError names every failing
// song. Timing drift is advisory: duration differences of vowels are pooled
// over the entire batch into DriftStatistics, and every song's leading silence
// and vowel durations are then compared against a mean ± k·stdev band. Drift
// findings are logged and returned, never raised.
package validate
