package label

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"labprep/internal/fileutil"
)

// ErrMalformed marks .lab input that cannot be parsed.
var ErrMalformed = errors.New("malformed label")

// Stream is the ordered record sequence of one song for one stream kind.
type Stream struct {
	Song    string
	Kind    Kind
	Path    string
	Records []Record
}

// Len returns the number of records.
func (s Stream) Len() int {
	return len(s.Records)
}

// TotalDuration sums the durations of every record.
func (s Stream) TotalDuration() Ticks {
	var total Ticks
	for _, rec := range s.Records {
		total += rec.Duration()
	}
	return total
}

// Symbols returns the symbol sequence.
func (s Stream) Symbols() []string {
	out := make([]string, len(s.Records))
	for i, rec := range s.Records {
		out[i] = rec.Symbol
	}
	return out
}

// Clone returns a copy whose record slice does not alias s.
func (s Stream) Clone() Stream {
	out := s
	out.Records = append([]Record(nil), s.Records...)
	return out
}

// Shifted returns a copy with every time moved so the first record starts at 0.
func (s Stream) Shifted() Stream {
	out := s.Clone()
	if len(out.Records) == 0 {
		return out
	}
	dt := out.Records[0].Start
	for i := range out.Records {
		out.Records[i].Start -= dt
		out.Records[i].End -= dt
	}
	return out
}

// Reversed returns the stream mirrored in time around its final end tick.
func (s Stream) Reversed() Stream {
	out := s.Clone()
	n := len(out.Records)
	if n == 0 {
		return out
	}
	globalEnd := s.Records[n-1].End
	for i, rec := range s.Records {
		out.Records[n-1-i] = Record{
			Start:   globalEnd - rec.End,
			End:     globalEnd - rec.Start,
			Symbol:  rec.Symbol,
			Context: rec.Context,
		}
	}
	return out
}

// AsMono projects a full-context stream onto its mono counterpart.
func (s Stream) AsMono() Stream {
	out := s.Clone()
	switch s.Kind {
	case FullScore:
		out.Kind = MonoScore
	case FullAlign:
		out.Kind = MonoAlign
	}
	for i := range out.Records {
		out.Records[i].Context = ""
	}
	return out
}

// Parse reads records in "start end text" form. For full kinds the text is
// kept as the context payload and the symbol is its centre phoneme.
func Parse(r io.Reader, kind Kind) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 fields, got %d", ErrMalformed, lineNo, len(fields))
		}
		start, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: start: %v", ErrMalformed, lineNo, err)
		}
		end, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: end: %v", ErrMalformed, lineNo, err)
		}
		if start > end {
			return nil, fmt.Errorf("%w: line %d: start %d after end %d", ErrMalformed, lineNo, start, end)
		}
		if n := len(records); n > 0 && Ticks(start) < records[n-1].Start {
			return nil, fmt.Errorf("%w: line %d: start %d precedes previous start %d", ErrMalformed, lineNo, start, records[n-1].Start)
		}

		text := strings.Join(fields[2:], " ")
		rec := Record{Start: Ticks(start), End: Ticks(end)}
		if kind.IsFull() {
			rec.Context = text
			rec.Symbol = CentrePhoneme(text)
		} else {
			rec.Symbol = text
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read label: %w", err)
	}
	return records, nil
}

// Format writes records one per line.
func Format(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%d %d %s\n", rec.Start, rec.End, rec.Text()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads a .lab file as a stream of the given kind.
func Load(path string, kind Kind, song string) (Stream, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stream{}, fmt.Errorf("open label: %w", err)
	}
	defer file.Close()

	records, err := Parse(file, kind)
	if err != nil {
		return Stream{}, fmt.Errorf("%s: %w", path, err)
	}
	return Stream{Song: song, Kind: kind, Path: path, Records: records}, nil
}

// Write serializes the stream to path, replacing any existing file atomically.
func (s Stream) Write(path string) error {
	var buf bytes.Buffer
	if err := Format(&buf, s.Records); err != nil {
		return fmt.Errorf("format label: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write label %s: %w", path, err)
	}
	return nil
}
