package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"labprep/internal/label"
	"labprep/internal/pipeline"
	"labprep/internal/preflight"
	"labprep/internal/validate"
)

var allInputs = preflight.Needs{Inputs: label.Kinds[:]}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check aligned labels against score labels",
		Long: "Resets aligned labels to start at 0, fails when any song's aligned and score\n" +
			"phonemes disagree, and warns about leading silence and vowel durations that\n" +
			"drift outside the batch-wide tolerance band.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, allInputs, func(p *pipeline.Pipeline) error {
				res, err := p.Validate(cmd.Context())
				printValidation(cmd.OutOrStdout(), res)
				return err
			})
		},
	}
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "segment",
		Short: "Split labels at pauses into *_round_seg directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, allInputs, func(p *pipeline.Pipeline) error {
				res, err := p.Segment(cmd.Context())
				printSegmentation(cmd.OutOrStdout(), res)
				return err
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Validate, then segment when no structural mismatch is found",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, allInputs, func(p *pipeline.Pipeline) error {
				res, err := p.Run(cmd.Context())
				printValidation(cmd.OutOrStdout(), res)
				if err == nil || res.Segments > 0 || len(res.Failed) > 0 {
					printSegmentation(cmd.OutOrStdout(), res)
				}
				return err
			})
		},
	}
}

func printValidation(out io.Writer, res pipeline.Result) {
	report := res.Validation
	if report == nil {
		return
	}
	fmt.Fprintf(out, "Validated %d songs (run %s)\n", res.Songs, res.RunID)
	if len(report.Normalized) > 0 {
		fmt.Fprintf(out, "Aligned start reset to 0: %d songs\n", len(report.Normalized))
	}
	if report.StatsSkipped {
		fmt.Fprintln(out, "Drift checks skipped: no vowel samples")
		return
	}
	if report.Stats.Samples > 0 {
		fmt.Fprintf(out, "Vowel drift: median %.1f ms, mean %.1f ms, stdev %.1f ms over %d samples\n",
			report.Stats.Median.Milliseconds(), report.Stats.Mean.Milliseconds(),
			report.Stats.PopStdev.Milliseconds(), report.Stats.Samples)
	}
	if len(report.Findings) == 0 {
		fmt.Fprintln(out, "No drift findings")
		return
	}
	fmt.Fprintln(out, renderFindings(report.Findings))
}

func renderFindings(findings []validate.Finding) string {
	tbl := newLabelTable(textCol("Song"), textCol("Check"), numCol("Index"),
		textCol("Symbol"), numCol("Delta ms"), textCol("Band ms"))
	for _, f := range findings {
		tbl.add(f.Song, string(f.Check), countCell(f.Index), f.Symbol,
			msCell(f.Delta), bandCell(f.Lower, f.Upper))
	}
	return tbl.String()
}

func printSegmentation(out io.Writer, res pipeline.Result) {
	fmt.Fprintf(out, "Wrote %d segments from %d songs (run %s)\n", res.Segments, res.Songs, res.RunID)
	for _, name := range res.Failed {
		fmt.Fprintf(out, "Failed: %s\n", name)
	}
}
