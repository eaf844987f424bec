package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"labprep/internal/label"
	"labprep/internal/ledger"
	"labprep/internal/logging"
	"labprep/internal/progress"
	"labprep/internal/segment"
	"labprep/internal/validate"
	"labprep/internal/workpool"
)

func (p *Pipeline) validate(ctx context.Context, r *run, songs []label.Song) (validate.Report, error) {
	opts, err := p.validatorOptions(r)
	if err != nil {
		return validate.Report{}, err
	}
	report, runErr := validate.New(opts).Run(ctx, songs)

	var batch *validate.BatchError
	if errors.As(runErr, &batch) && p.ledger != nil {
		for _, m := range batch.Mismatches {
			p.recordFailure(ctx, r, m.Song, "validate", m.String())
		}
	}
	if p.ledger != nil && len(report.Findings) > 0 {
		rows := make([]ledger.Finding, len(report.Findings))
		for i, f := range report.Findings {
			rows[i] = ledger.Finding{
				Song:       f.Song,
				Check:      string(f.Check),
				Path:       f.AlignPath,
				Index:      f.Index,
				Symbol:     f.Symbol,
				DeltaTicks: int64(f.Delta),
				LowerTicks: int64(f.Lower),
				UpperTicks: int64(f.Upper),
			}
		}
		if err := p.ledger.RecordFindings(ctx, r.id, rows); err != nil {
			r.logger.Warn("failed to record findings", logging.Error(err))
		}
	}

	r.logger.Info("validation finished",
		logging.Int("songs", len(songs)),
		logging.Int("normalized", len(report.Normalized)),
		logging.Int("findings", len(report.Findings)),
		logging.Bool("drift_checked", !report.StatsSkipped),
	)
	return report, runErr
}

// segment splits and writes every song on the worker pool. It returns the
// number of segments written and the names of songs that failed.
func (p *Pipeline) segment(ctx context.Context, r *run, songs []label.Song) (int, []string, error) {
	if err := p.corpus.EnsureSegDirs(); err != nil {
		return 0, nil, err
	}
	cfg := p.segmentConfig()
	failFast := p.cfg.Segmentation.FailFast
	r.logger.Info("segmentation started",
		logging.Int("songs", len(songs)),
		logging.Float64("max_pause_ms", cfg.MaxPauseDuration.Milliseconds()),
		logging.Float64("max_segment_ms", cfg.MaxSegmentLength.Milliseconds()),
		logging.Any("pause_symbols", cfg.PauseSymbols),
		logging.Bool("fail_fast", failFast),
	)

	dispatchCtx, stop := context.WithCancel(ctx)
	defer stop()

	reporter := progress.New(p.progress, len(songs), "segment", r.logger)
	defer reporter.Finish()

	var (
		mu       sync.Mutex
		written  int
		failed   []string
		failures []error
	)
	workers := workpool.Resolve(p.cfg.Workers, len(songs))
	dispatchErr := workpool.ForEach(dispatchCtx, len(songs), workers, func(_ context.Context, i int) {
		defer reporter.Increment()
		n, err := p.segmentSong(ctx, r, songs[i], cfg)

		mu.Lock()
		defer mu.Unlock()
		written += n
		if err == nil {
			return
		}
		failed = append(failed, songs[i].Name)
		failures = append(failures, err)
		if failFast {
			stop()
		}
	})

	if len(failures) > 0 {
		return written, failed, fmt.Errorf("%d of %d songs failed segmentation: %w",
			len(failures), len(songs), errors.Join(failures...))
	}
	// Cancellation of the caller's context is an error; the internal fail-fast
	// stop never reaches here without failures.
	if dispatchErr != nil && ctx.Err() != nil {
		return written, failed, ctx.Err()
	}
	return written, failed, nil
}

func (p *Pipeline) segmentSong(ctx context.Context, r *run, song label.Song, cfg segment.Config) (int, error) {
	logger := logging.ForSong(r.logger, song.Name)

	segments, err := segment.Split(song, cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "segmentation failed", "segment_failed",
			logging.String(logging.FieldErrorHint, segmentHint(err)),
			logging.Error(err),
		)
		p.recordFailure(ctx, r, song.Name, "segment", err.Error())
		// Segments from an earlier run no longer match this song's labels.
		if removed, rmErr := p.corpus.RemoveSegments(song.Name); rmErr != nil {
			logger.Warn("failed to remove stale segments", logging.Error(rmErr))
		} else if removed > 0 {
			logging.WarnWithContext(logger, "removed stale segments", "stale_segments_removed",
				logging.Int("files", removed),
				logging.String(logging.FieldImpact, "song is missing from train lists until it segments cleanly"),
			)
		}
		return 0, err
	}

	names, err := p.corpus.WriteSegments(segments)
	if err != nil {
		err = fmt.Errorf("write segments of %s: %w", song.Name, err)
		logging.ErrorWithContext(logger, "writing segments failed", "segment_write_failed", logging.Error(err))
		p.recordFailure(ctx, r, song.Name, "write", err.Error())
		return len(names), err
	}

	if p.ledger != nil {
		rows := make([]ledger.Segment, len(segments))
		for i, seg := range segments {
			rows[i] = ledger.Segment{
				Song:          song.Name,
				Name:          seg.Name(),
				Records:       seg.Streams.Len(),
				DurationTicks: int64(seg.Streams[label.MonoScore].TotalDuration()),
			}
		}
		if err := p.ledger.RecordSegments(ctx, r.id, rows); err != nil {
			logger.Warn("failed to record segments", logging.Error(err))
		}
	}
	for _, seg := range segments {
		logger.Debug("segment written",
			logging.String(logging.FieldSegment, seg.Name()),
			logging.Int("records", seg.Streams.Len()),
			logging.Float64("duration_ms", seg.Streams[label.MonoScore].TotalDuration().Milliseconds()),
		)
	}
	logger.Debug("song segmented", logging.Int("segments", len(segments)))
	return len(names), nil
}

func segmentHint(err error) string {
	switch {
	case errors.Is(err, segment.ErrBoundaryViolation):
		return "start and end the mono_score label with a pause symbol"
	case errors.Is(err, segment.ErrSegmentTooShort):
		return "check the phrase at the reported index or adjust max_pause_duration/max_segment_length"
	case errors.Is(err, segment.ErrStructuralMismatch):
		return "make the four label files of this song list the same phonemes"
	default:
		return "fix the label files and rerun"
	}
}

func (p *Pipeline) recordFailure(ctx context.Context, r *run, song, stage, message string) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.RecordFailure(ctx, r.id, ledger.Failure{Song: song, Stage: stage, Message: message})
	if err != nil {
		r.logger.Warn("failed to record failure", logging.Error(err))
	}
}
