package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"labprep/internal/label"
	"labprep/internal/testsupport"
)

var p = testsupport.P

var fixtureSong = []testsupport.Phone{
	p("pau", 50000), p("a", 10000), p("k", 5000), p("a", 10000),
	p("pau", 60000), p("pau", 5000), p("i", 8000), p("pau", 40000),
}

type cliTestEnv struct {
	outDir     string
	configPath string
}

func setupCLITestEnv(t *testing.T, songs ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	outDir := filepath.Join(base, "out")
	for _, name := range songs {
		testsupport.WriteSong(t, outDir, name, fixtureSong, fixtureSong)
	}
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, outDir)
	return &cliTestEnv{outDir: outDir, configPath: configPath}
}

func writeTestConfig(t *testing.T, path, outDir string) {
	t.Helper()
	content := fmt.Sprintf(`out_dir = %q
workers = 2

[segmentation]
max_pause_duration = 0.0055
max_segment_length = 0.1

[train_list]
interval = 5

[logging]
level = "error"
`, outDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

var runIDPattern = regexp.MustCompile(`\(run ([0-9a-f-]{36})\)`)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "55000 ticks")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestRunTrainListFinalizeAndReport(t *testing.T) {
	env := setupCLITestEnv(t, "song1", "song2")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Validated 2 songs")
	requireContains(t, out, "Wrote 4 segments from 2 songs")
	match := runIDPattern.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("no run id in output %q", out)
	}
	runID := match[1]

	for _, kind := range label.Kinds {
		path := filepath.Join(env.outDir, kind.SegDir(), "song2__seg01.lab")
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
	}

	out, _, err = runCLI(t, []string{"trainlist"}, env.configPath)
	if err != nil {
		t.Fatalf("trainlist: %v", err)
	}
	requireContains(t, out, "train_no_dev.list")
	if got := testsupport.ReadFile(t, filepath.Join(env.outDir, "list", "dev.list")); got != "song1__seg00" {
		t.Fatalf("dev.list = %q", got)
	}

	out, _, err = runCLI(t, []string{"finalize"}, env.configPath)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	requireContains(t, out, "acoustic/label_phone_score")

	out, _, err = runCLI(t, []string{"report"}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, runID)
	requireContains(t, out, "finalize")

	out, _, err = runCLI(t, []string{"report", "--run", runID}, env.configPath)
	if err != nil {
		t.Fatalf("report --run: %v", err)
	}
	requireContains(t, out, "Songs: 2  Segments: 4")
	requireContains(t, out, "succeeded")
}

func TestRunReportsStructuralMismatch(t *testing.T) {
	env := setupCLITestEnv(t, "song1")
	short := []testsupport.Phone{p("pau", 50000), p("a", 10000), p("pau", 40000)}
	testsupport.WriteSong(t, env.outDir, "song2", fixtureSong, short)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected structural mismatch error")
	}
	requireContains(t, err.Error(), "song2")
	if strings.Contains(out, "Wrote") {
		t.Fatalf("no segments should be written: %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.outDir, label.MonoScore.SegDir())); !os.IsNotExist(err) {
		t.Fatalf("segment directory should not exist, stat err = %v", err)
	}
}

func TestPreflightFailsWithoutInputs(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"segment"}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	requireContains(t, err.Error(), label.MonoScore.Dir())
}

func TestReverseCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.lab")
	testsupport.WriteLab(t, path, testsupport.Records(0, false, p("pau", 100), p("a", 50)))

	out, _, err := runCLI(t, []string{"reverse", dir}, "")
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	requireContains(t, out, "Reversed 1 label files")
	requireContains(t, testsupport.ReadFile(t, path), "0 50 a")
}

func TestReportRequiresLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("\n[ledger]\nenabled = false\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	f.Close()

	if _, _, err := runCLI(t, []string{"report"}, env.configPath); err == nil {
		t.Fatal("expected ledger disabled error")
	}
}
