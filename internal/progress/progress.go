// Package progress reports per-song progress as a side channel: a terminal
// progress bar when attached to a TTY, sampled log lines otherwise.
package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"labprep/internal/logging"
)

// Reporter receives completion ticks from concurrent workers.
type Reporter interface {
	Increment()
	Finish()
}

// New picks a bar for interactive terminals and a log reporter otherwise.
func New(w io.Writer, total int, phase string, logger *slog.Logger) Reporter {
	if isTerminal(w) {
		return newBar(w, total, phase)
	}
	return NewLog(logger, total, phase)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBar(w io.Writer, total int, phase string) *barReporter {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(phase),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	return &barReporter{bar: bar}
}

func (r *barReporter) Increment() {
	_ = r.bar.Add(1)
}

func (r *barReporter) Finish() {
	_ = r.bar.Finish()
}

// LogReporter emits an info line each time progress crosses a 10% bucket.
type LogReporter struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	phase   string
	total   int
	done    int
}

// NewLog builds a log-backed reporter.
func NewLog(logger *slog.Logger, total int, phase string) *LogReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogReporter{
		logger:  logger,
		sampler: logging.NewProgressSampler(10),
		phase:   phase,
		total:   total,
	}
}

func (r *LogReporter) Increment() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	r.emit()
}

func (r *LogReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = r.total
	r.emit()
}

// Done reports how many items completed.
func (r *LogReporter) Done() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *LogReporter) emit() {
	percent := 100.0
	if r.total > 0 {
		percent = float64(r.done) * 100 / float64(r.total)
	}
	if !r.sampler.ShouldLog(percent, r.phase) {
		return
	}
	r.logger.Info("progress",
		logging.String("phase", r.phase),
		logging.Int("done", r.done),
		logging.Int("total", r.total),
	)
}
