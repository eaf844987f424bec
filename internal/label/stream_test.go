package label

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const monoSample = `0 500000 pau
500000 600000 k
600000 1200000 a
1200000 1700000 pau
`

const fullSample = `0 500000 xx^xx-pau+k=a/A:xx+xx+xx/B:xx-xx_xx
500000 600000 xx^pau-k+a=pau/A:-1+1+1/B:xx-xx_xx
600000 1200000 pau^k-a+pau=xx/A:0+1+1/B:xx-xx_xx
1200000 1700000 k^a-pau+xx=xx/A:xx+xx+xx/B:xx-xx_xx
`

func TestParseMono(t *testing.T) {
	records, err := Parse(strings.NewReader(monoSample), MonoScore)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[2].Symbol != "a" || records[2].Start != 600000 || records[2].End != 1200000 {
		t.Fatalf("unexpected record: %+v", records[2])
	}
	if records[2].Duration() != 600000 {
		t.Fatalf("duration = %d, want 600000", records[2].Duration())
	}
	if records[0].IsFull() {
		t.Fatal("mono record should not carry a context payload")
	}
}

func TestParseFullExtractsCentrePhoneme(t *testing.T) {
	records, err := Parse(strings.NewReader(fullSample), FullScore)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := Stream{Records: records}.Symbols()
	want := []string{"pau", "k", "a", "pau"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("symbols = %v, want %v", got, want)
	}
	if !records[1].IsFull() {
		t.Fatal("expected full record to keep its context")
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing symbol", "0 100\n"},
		{"bad start", "x 100 a\n"},
		{"start after end", "200 100 a\n"},
		{"out of order", "100 200 a\n0 100 b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), MonoScore)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestRoundTripPreservesRecords(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		text string
	}{
		{MonoAlign, monoSample},
		{FullAlign, fullSample},
	} {
		dir := t.TempDir()
		src := filepath.Join(dir, "song.lab")
		if err := os.WriteFile(src, []byte(tc.text), 0o644); err != nil {
			t.Fatal(err)
		}
		stream, err := Load(src, tc.kind, "song")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		dst := filepath.Join(dir, "copy.lab")
		if err := stream.Write(dst); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tc.text {
			t.Fatalf("%s round trip mismatch:\n%s\nwant:\n%s", tc.kind, got, tc.text)
		}
		reloaded, err := Load(dst, tc.kind, "song")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(reloaded.Records, stream.Records) {
			t.Fatalf("%s reloaded records differ", tc.kind)
		}
	}
}

func TestShiftedStartsAtZero(t *testing.T) {
	s := Stream{Records: []Record{{Start: 300, End: 500, Symbol: "pau"}, {Start: 500, End: 900, Symbol: "a"}}}
	shifted := s.Shifted()
	if shifted.Records[0].Start != 0 || shifted.Records[1].End != 600 {
		t.Fatalf("unexpected shift: %+v", shifted.Records)
	}
	if s.Records[0].Start != 300 {
		t.Fatal("Shifted must not mutate the receiver")
	}
}

func TestReversed(t *testing.T) {
	s := Stream{Records: []Record{
		{Start: 0, End: 100, Symbol: "pau"},
		{Start: 100, End: 400, Symbol: "a"},
		{Start: 400, End: 500, Symbol: "sil"},
	}}
	got := s.Reversed().Records
	want := []Record{
		{Start: 0, End: 100, Symbol: "sil"},
		{Start: 100, End: 400, Symbol: "a"},
		{Start: 400, End: 500, Symbol: "pau"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reversed = %+v, want %+v", got, want)
	}
}

func TestAsMono(t *testing.T) {
	records, err := Parse(strings.NewReader(fullSample), FullScore)
	if err != nil {
		t.Fatal(err)
	}
	mono := Stream{Kind: FullScore, Records: records}.AsMono()
	if mono.Kind != MonoScore {
		t.Fatalf("kind = %s, want mono_score", mono.Kind)
	}
	var buf bytes.Buffer
	if err := Format(&buf, mono.Records); err != nil {
		t.Fatal(err)
	}
	if buf.String() != monoSample {
		t.Fatalf("AsMono output:\n%s\nwant:\n%s", buf.String(), monoSample)
	}
}

func TestGroupSliceAndAppend(t *testing.T) {
	var g Group
	for _, kind := range Kinds {
		g[kind] = Stream{Song: "s", Kind: kind, Records: []Record{
			{Start: 0, End: 1, Symbol: "pau"},
			{Start: 1, End: 2, Symbol: "a"},
			{Start: 2, End: 3, Symbol: "pau"},
		}}
	}
	head := g.Slice(0, 2)
	if head.Len() != 2 || !head.Aligned() {
		t.Fatalf("unexpected slice counts: %v", head.Counts())
	}
	head[MonoScore].Records[0].Symbol = "changed"
	if g[MonoScore].Records[0].Symbol != "pau" {
		t.Fatal("Slice must not alias the source group")
	}

	var acc Group
	if !acc.Empty() {
		t.Fatal("zero group should be empty")
	}
	acc.Append(g.Slice(0, 1))
	acc.Append(g.Slice(1, 3))
	if acc.Len() != 3 || acc[FullAlign].Kind != FullAlign {
		t.Fatalf("unexpected appended group: %v", acc.Counts())
	}
}

func TestKindNames(t *testing.T) {
	if MonoAlign.SegDir() != "mono_align_round_seg" {
		t.Fatalf("SegDir = %q", MonoAlign.SegDir())
	}
	kind, err := ParseKind("Full_Score")
	if err != nil || kind != FullScore {
		t.Fatalf("ParseKind = %v, %v", kind, err)
	}
	if _, err := ParseKind("stereo"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
