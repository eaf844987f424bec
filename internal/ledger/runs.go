package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// timeLayout is fixed width so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of a labprep command.
type Run struct {
	ID         string
	Command    string
	OutDir     string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Songs      int
	Segments   int
	Error      string
}

// Segment is one written segment.
type Segment struct {
	Song          string
	Name          string
	Records       int
	DurationTicks int64
}

// Finding is one advisory drift finding.
type Finding struct {
	Song       string
	Check      string
	Path       string
	Index      int
	Symbol     string
	DeltaTicks int64
	LowerTicks int64
	UpperTicks int64
}

// Failure is one song that could not be processed.
type Failure struct {
	Song    string
	Stage   string
	Message string
}

// Summary aggregates what a run recorded.
type Summary struct {
	Run             Run
	SegmentCount    int
	FindingsByCheck map[string]int
	Failures        []Failure
}

// StartRun inserts a running run.
func (s *Store) StartRun(ctx context.Context, id, command, outDir string) (Run, error) {
	run := Run{
		ID:        id,
		Command:   command,
		OutDir:    outDir,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, command, out_dir, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.OutDir, run.Status, run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the outcome and totals of a run. A non-nil runErr marks
// the run failed.
func (s *Store) FinishRun(ctx context.Context, id string, songs, segments int, runErr error) error {
	status := StatusSucceeded
	var message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, songs = ?, segments = ?, error_message = ? WHERE id = ?`,
		status, time.Now().UTC().Format(timeLayout), songs, segments, message, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordSegments stores the segments written for one song.
func (s *Store) RecordSegments(ctx context.Context, runID string, segments []Segment) error {
	for _, seg := range segments {
		err := s.exec(ctx,
			`INSERT OR REPLACE INTO segments (run_id, song, name, records, duration_ticks) VALUES (?, ?, ?, ?, ?)`,
			runID, seg.Song, seg.Name, seg.Records, seg.DurationTicks,
		)
		if err != nil {
			return fmt.Errorf("insert segment %s: %w", seg.Name, err)
		}
	}
	return nil
}

// RecordFindings stores advisory findings.
func (s *Store) RecordFindings(ctx context.Context, runID string, findings []Finding) error {
	for _, f := range findings {
		err := s.exec(ctx,
			`INSERT INTO findings (run_id, song, check_name, path, phoneme_index, symbol, delta_ticks, lower_ticks, upper_ticks)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Song, f.Check, f.Path, f.Index, f.Symbol, f.DeltaTicks, f.LowerTicks, f.UpperTicks,
		)
		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}
	return nil
}

// RecordFailure stores a per-song failure.
func (s *Store) RecordFailure(ctx context.Context, runID string, failure Failure) error {
	err := s.exec(ctx,
		`INSERT INTO failures (run_id, song, stage, message) VALUES (?, ?, ?, ?)`,
		runID, failure.Song, failure.Stage, failure.Message,
	)
	if err != nil {
		return fmt.Errorf("insert failure: %w", err)
	}
	return nil
}

const runColumns = `id, command, out_dir, status, started_at, finished_at, songs, segments, error_message`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var (
		run                 Run
		startedAt           string
		finishedAt, message sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Command, &run.OutDir, &run.Status, &startedAt, &finishedAt,
		&run.Songs, &run.Segments, &message); err != nil {
		return Run{}, err
	}
	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		run.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(timeLayout, finishedAt.String); err == nil {
			run.FinishedAt = t
		}
	}
	run.Error = message.String
	return run, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summarize aggregates one run's segments, findings, and failures.
func (s *Store) Summarize(ctx context.Context, id string) (Summary, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	ctx = ensureContext(ctx)
	summary := Summary{Run: run, FindingsByCheck: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM segments WHERE run_id = ?`, id).
		Scan(&summary.SegmentCount); err != nil {
		return Summary{}, fmt.Errorf("count segments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT check_name, COUNT(1) FROM findings WHERE run_id = ? GROUP BY check_name`, id)
	if err != nil {
		return Summary{}, fmt.Errorf("count findings: %w", err)
	}
	for rows.Next() {
		var (
			check string
			n     int
		)
		if err := rows.Scan(&check, &n); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("scan findings: %w", err)
		}
		summary.FindingsByCheck[check] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	failRows, err := s.db.QueryContext(ctx,
		`SELECT song, stage, message FROM failures WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return Summary{}, fmt.Errorf("list failures: %w", err)
	}
	defer failRows.Close()
	for failRows.Next() {
		var f Failure
		if err := failRows.Scan(&f.Song, &f.Stage, &f.Message); err != nil {
			return Summary{}, fmt.Errorf("scan failure: %w", err)
		}
		summary.Failures = append(summary.Failures, f)
	}
	return summary, failRows.Err()
}
