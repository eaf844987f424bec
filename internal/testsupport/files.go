package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labprep/internal/label"
)

// Phone is a fixture phoneme: a symbol and its duration in ticks.
type Phone struct {
	Symbol   string
	Duration label.Ticks
}

// P is shorthand for building fixture phonemes.
func P(symbol string, duration label.Ticks) Phone {
	return Phone{Symbol: symbol, Duration: duration}
}

// FullContext returns a fake full-context line whose centre phoneme is symbol.
func FullContext(symbol string, index int) string {
	return fmt.Sprintf("xx^xx-%s+xx=xx/A:%d+1+1/B:xx-xx_xx", symbol, index)
}

// Records lays phones end to end starting at tick start.
func Records(start label.Ticks, full bool, phones ...Phone) []label.Record {
	records := make([]label.Record, len(phones))
	at := start
	for i, p := range phones {
		records[i] = label.Record{Start: at, End: at + p.Duration, Symbol: p.Symbol}
		if full {
			records[i].Context = FullContext(p.Symbol, i)
		}
		at += p.Duration
	}
	return records
}

// WriteLab writes records to path in .lab form.
func WriteLab(t testing.TB, path string, records []label.Record) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var b strings.Builder
	if err := label.Format(&b, records); err != nil {
		t.Fatalf("format %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSong writes all four input streams of a song under root. The score
// streams use score and the aligned streams use align.
func WriteSong(t testing.TB, root, name string, score, align []Phone) {
	t.Helper()

	for _, kind := range label.Kinds {
		phones := score
		if kind == label.MonoAlign || kind == label.FullAlign {
			phones = align
		}
		path := filepath.Join(root, kind.Dir(), name+".lab")
		WriteLab(t, path, Records(0, kind.IsFull(), phones...))
	}
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
