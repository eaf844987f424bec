package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"labprep/internal/config"
	"labprep/internal/corpus"
	"labprep/internal/label"
	"labprep/internal/ledger"
	"labprep/internal/logging"
	"labprep/internal/segment"
	"labprep/internal/validate"
)

// ErrBusy is returned when another labprep process holds the out_dir lock.
var ErrBusy = errors.New("another labprep run is using this out_dir")

// Options configures a Pipeline.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Ledger is optional.
	Ledger *ledger.Store
	// Progress receives a progress bar when it is a terminal.
	Progress io.Writer
}

// Pipeline runs commands against one out_dir.
type Pipeline struct {
	cfg      *config.Config
	corpus   *corpus.Corpus
	ledger   *ledger.Store
	logger   *slog.Logger
	progress io.Writer
}

// New builds a pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		cfg:      opts.Config,
		corpus:   corpus.New(opts.Config.OutDir),
		ledger:   opts.Ledger,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
		progress: opts.Progress,
	}
}

// Corpus exposes the corpus the pipeline operates on.
func (p *Pipeline) Corpus() *corpus.Corpus {
	return p.corpus
}

// Result summarizes a validate, segment, or full run.
type Result struct {
	RunID      string
	Songs      int
	Validation *validate.Report
	Segments   int
	Failed     []string
}

// run holds the lock and ledger bookkeeping of one command.
type run struct {
	id     string
	logger *slog.Logger
}

func (p *Pipeline) withRun(ctx context.Context, command string, body func(r *run) (songs, segments int, err error)) (string, error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return "", err
	}
	lock := flock.New(p.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w (lock %s)", ErrBusy, p.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	r := &run{id: uuid.NewString()}
	r.logger = p.logger.With(logging.String(logging.FieldRunID, r.id))
	if p.ledger != nil {
		if _, err := p.ledger.StartRun(ctx, r.id, command, p.cfg.OutDir); err != nil {
			return "", err
		}
	}
	r.logger.Info("run started",
		logging.String("command", command),
		logging.String("out_dir", p.cfg.OutDir),
		logging.String(logging.FieldEventType, "run_start"),
	)

	started := time.Now()
	songs, segments, runErr := body(r)
	elapsed := time.Since(started)

	if p.ledger != nil {
		// Record the outcome even when ctx was cancelled.
		if err := p.ledger.FinishRun(context.WithoutCancel(ctx), r.id, songs, segments, runErr); err != nil {
			r.logger.Warn("failed to record run outcome", logging.Error(err))
		}
	}
	if runErr != nil {
		logging.ErrorWithContext(r.logger, "run failed", "run_failed",
			logging.String("command", command),
			logging.Duration("elapsed", elapsed),
			logging.Error(runErr),
		)
		return r.id, runErr
	}
	r.logger.Info("run finished",
		logging.String("command", command),
		logging.Int("songs", songs),
		logging.Int("segments", segments),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return r.id, nil
}

func (p *Pipeline) loadSongs(ctx context.Context) ([]label.Song, error) {
	entries, err := p.corpus.Discover()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no label files under %s", p.corpus.InputDir(label.MonoScore))
	}
	return p.corpus.LoadAll(ctx, entries, p.cfg.Workers)
}

// Validate checks every song for structural mismatches and timing drift.
func (p *Pipeline) Validate(ctx context.Context) (Result, error) {
	var res Result
	id, err := p.withRun(ctx, "validate", func(r *run) (int, int, error) {
		songs, err := p.loadSongs(ctx)
		if err != nil {
			return 0, 0, err
		}
		res.Songs = len(songs)
		report, err := p.validate(ctx, r, songs)
		res.Validation = &report
		return len(songs), 0, err
	})
	res.RunID = id
	return res, err
}

// Segment splits every song without validating first.
func (p *Pipeline) Segment(ctx context.Context) (Result, error) {
	var res Result
	id, err := p.withRun(ctx, "segment", func(r *run) (int, int, error) {
		songs, err := p.loadSongs(ctx)
		if err != nil {
			return 0, 0, err
		}
		res.Songs = len(songs)
		res.Segments, res.Failed, err = p.segment(ctx, r, songs)
		return len(songs), res.Segments, err
	})
	res.RunID = id
	return res, err
}

// Run validates the batch and, when no structural mismatch is found,
// segments it.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result
	id, err := p.withRun(ctx, "run", func(r *run) (int, int, error) {
		songs, err := p.loadSongs(ctx)
		if err != nil {
			return 0, 0, err
		}
		res.Songs = len(songs)
		report, err := p.validate(ctx, r, songs)
		res.Validation = &report
		if err != nil {
			return len(songs), 0, err
		}
		res.Segments, res.Failed, err = p.segment(ctx, r, songs)
		return len(songs), res.Segments, err
	})
	res.RunID = id
	return res, err
}

func (p *Pipeline) validatorOptions(r *run) (validate.Options, error) {
	strictness, err := validate.ParseStrictness(p.cfg.Validation.Strictness)
	if err != nil {
		return validate.Options{}, err
	}
	return validate.Options{
		Strictness: strictness,
		Vowels:     validate.NewSymbols(p.cfg.Validation.Vowels...),
		Pauses:     validate.NewSymbols(p.cfg.Validation.PauseSymbols...),
		Workers:    p.cfg.Workers,
		Persister:  p.corpus,
		Logger:     r.logger,
	}, nil
}

func (p *Pipeline) segmentConfig() segment.Config {
	return segment.Config{
		MaxPauseDuration: p.cfg.Segmentation.MaxPauseDurationTicks,
		MaxSegmentLength: p.cfg.Segmentation.MaxSegmentLengthTicks,
		PauseSymbols:     p.cfg.Segmentation.PauseSymbols,
	}
}
