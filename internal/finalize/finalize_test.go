package finalize_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"labprep/internal/corpus"
	"labprep/internal/finalize"
	"labprep/internal/label"
	"labprep/internal/logging"
	"labprep/internal/testsupport"
)

func TestRunCopiesAndFixesOffsets(t *testing.T) {
	root := t.TempDir()
	phones := []testsupport.Phone{testsupport.P("pau", 5000), testsupport.P("i", 8000)}
	for _, kind := range []label.Kind{label.FullAlign, label.FullScore} {
		path := filepath.Join(root, kind.SegDir(), "song__seg01.lab")
		testsupport.WriteLab(t, path, testsupport.Records(135000, true, phones...))
	}

	results, err := finalize.New(corpus.New(root), 2, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(finalize.Targets) {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if r.Files != 1 {
			t.Fatalf("%s: files = %d", r.Target.Dir, r.Files)
		}
	}

	src := testsupport.ReadFile(t, filepath.Join(root, label.FullAlign.SegDir(), "song__seg01.lab"))
	copied := testsupport.ReadFile(t, filepath.Join(root, "timelag", "label_phone_align", "song__seg01.lab"))
	if copied != src {
		t.Fatalf("timelag copy differs:\n%s\nvs\n%s", copied, src)
	}

	shifted := testsupport.ReadFile(t, filepath.Join(root, "acoustic", "label_phone_score", "song__seg01.lab"))
	if !strings.HasPrefix(shifted, "0 5000 ") {
		t.Fatalf("acoustic label not shifted: %q", shifted)
	}
	lines := strings.Split(strings.TrimSpace(shifted), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "5000 13000 xx^xx-i+") {
		t.Fatalf("unexpected shifted label: %q", shifted)
	}
}

func TestRunRequiresSegments(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteLab(t, filepath.Join(root, label.FullAlign.SegDir(), "x__seg00.lab"),
		testsupport.Records(0, true, testsupport.P("pau", 1), testsupport.P("a", 1)))
	if _, err := finalize.New(corpus.New(root), 1, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error when full_score segments are missing")
	}
}
