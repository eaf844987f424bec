package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"labprep/internal/label"
	"labprep/internal/logging"
	"labprep/internal/workpool"
)

// Persister writes a corrected stream back to its source location.
type Persister interface {
	PersistStream(ctx context.Context, stream label.Stream) error
}

// Options configures a Validator.
type Options struct {
	Strictness Strictness
	Vowels     Symbols
	Pauses     Symbols
	Workers    int
	Persister  Persister
	Logger     *slog.Logger
}

// Report summarizes a validation run.
type Report struct {
	Normalized []string
	Stats      DriftStatistics
	// StatsSkipped is set when no vowel qualified for the pooled statistics.
	StatsSkipped bool
	Findings     []Finding
}

// Validator checks a batch of songs.
type Validator struct {
	strictness Strictness
	vowels     Symbols
	pauses     Symbols
	workers    int
	persister  Persister
	logger     *slog.Logger
}

// New builds a validator, filling in default symbol sets.
func New(opts Options) *Validator {
	v := &Validator{
		strictness: opts.Strictness,
		vowels:     opts.Vowels,
		pauses:     opts.Pauses,
		workers:    opts.Workers,
		persister:  opts.Persister,
		logger:     logging.NewComponentLogger(opts.Logger, "validate"),
	}
	if len(v.vowels) == 0 {
		v.vowels = DefaultVowels()
	}
	if len(v.pauses) == 0 {
		v.pauses = DefaultPauses()
	}
	return v
}

// Run normalizes every aligned stream, checks symbol parity across the whole
// batch, then computes pooled drift statistics and runs the advisory checks
// for each song. Parity failures are returned together as a *BatchError after
// every song has been examined. Drift findings never produce an error.
func (v *Validator) Run(ctx context.Context, songs []label.Song) (Report, error) {
	var report Report

	for i := range songs {
		align := songs[i].Stream(label.MonoAlign)
		if !NormalizeLeadingSilence(align) {
			continue
		}
		report.Normalized = append(report.Normalized, songs[i].Name)
		logging.WarnWithContext(v.logger, "aligned label did not start at 0; start reset",
			"leading_silence_normalized",
			logging.String(logging.FieldSong, songs[i].Name),
			logging.String(logging.FieldPath, align.Path),
			logging.String(logging.FieldImpact, "aligned label rewritten in place"),
		)
		if v.persister != nil {
			if err := v.persister.PersistStream(ctx, *align); err != nil {
				return report, fmt.Errorf("persist %s: %w", align.Path, err)
			}
		}
	}

	var mismatches []Mismatch
	for i := range songs {
		align, score := songs[i].Stream(label.MonoAlign), songs[i].Stream(label.MonoScore)
		m, ok := CheckSymbolParity(*align, *score)
		if ok {
			continue
		}
		if m.Song == "" {
			m.Song = songs[i].Name
		}
		mismatches = append(mismatches, m)
		v.logger.Error("aligned and score labels disagree",
			logging.String(logging.FieldSong, m.Song),
			logging.String(logging.FieldPath, m.AlignPath),
			logging.String("detail", m.String()),
			logging.String(logging.FieldEventType, "structural_mismatch"),
		)
	}
	if len(mismatches) > 0 {
		return report, &BatchError{Mismatches: mismatches}
	}

	aligns := make([]label.Stream, len(songs))
	scores := make([]label.Stream, len(songs))
	for i := range songs {
		aligns[i] = *songs[i].Stream(label.MonoAlign)
		scores[i] = *songs[i].Stream(label.MonoScore)
	}
	stats, err := ComputeDriftStatistics(aligns, scores, v.vowels, v.pauses)
	if errors.Is(err, ErrNoDriftSamples) {
		report.StatsSkipped = true
		logging.WarnWithContext(v.logger, "no vowels qualified for drift statistics; drift checks skipped",
			"drift_statistics_empty",
			logging.Int("songs", len(songs)),
			logging.String(logging.FieldImpact, "timing drift not checked"),
		)
		return report, nil
	}
	if err != nil {
		return report, err
	}
	report.Stats = stats
	v.logger.Info("drift statistics",
		logging.Int("samples", stats.Samples),
		logging.Float64("median_ms", stats.Median.Milliseconds()),
		logging.Float64("mean_ms", stats.Mean.Milliseconds()),
		logging.Float64("stdev_ms", stats.PopStdev.Milliseconds()),
	)

	perSong := make([][]Finding, len(songs))
	workers := workpool.Resolve(v.workers, len(songs))
	err = workpool.ForEach(ctx, len(songs), workers, func(_ context.Context, i int) {
		perSong[i] = v.checkSong(aligns[i], scores[i], stats)
	})
	for _, findings := range perSong {
		report.Findings = append(report.Findings, findings...)
	}
	return report, err
}

func (v *Validator) checkSong(align, score label.Stream, stats DriftStatistics) []Finding {
	var findings []Finding
	if f, ok := CheckLeadingSilenceOffset(align, score, stats, v.strictness); !ok {
		findings = append(findings, f)
	}
	if fs, ok := CheckVowelDurationConsistency(align, score, stats, v.strictness, v.vowels, v.pauses); !ok {
		findings = append(findings, fs...)
	}
	for _, f := range findings {
		v.logFinding(f)
	}
	return findings
}

func (v *Validator) logFinding(f Finding) {
	attrs := []logging.Attr{
		logging.String(logging.FieldSong, f.Song),
		logging.String(logging.FieldCheck, string(f.Check)),
		logging.String(logging.FieldPath, f.AlignPath),
		logging.String("score_path", f.ScorePath),
		logging.Int("index", f.Index),
		logging.String("symbol", f.Symbol),
		logging.Float64("delta_ms", f.Delta.Milliseconds()),
		logging.Float64("lower_ms", f.Lower.Milliseconds()),
		logging.Float64("upper_ms", f.Upper.Milliseconds()),
		logging.Int64("k", f.K),
	}
	if f.Previous != nil {
		attrs = append(attrs,
			logging.String("prev_symbol", f.Previous.Symbol),
			logging.Float64("prev_ms", f.Previous.Duration.Milliseconds()),
		)
	}
	if f.Next != nil {
		attrs = append(attrs,
			logging.String("next_symbol", f.Next.Symbol),
			logging.Float64("next_ms", f.Next.Duration.Milliseconds()),
		)
	}
	msg := fmt.Sprintf("%s drift: %s delta %.1f ms", f.Check, f.AlignPath, f.Delta.Milliseconds())
	logging.WarnWithContext(v.logger, msg, "drift_finding", attrs...)
}
