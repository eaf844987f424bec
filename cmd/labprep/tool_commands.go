package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labprep/internal/label"
	"labprep/internal/pipeline"
	"labprep/internal/preflight"
)

func newFullToMonoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "full2mono",
		Short: "Derive mono_score_round labels from full_score_round labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			needs := preflight.Needs{Inputs: []label.Kind{label.FullScore}}
			return ctx.withPipeline(cmd, needs, func(p *pipeline.Pipeline) error {
				n, err := p.FullToMono(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d mono score labels to %s\n", n, p.Corpus().InputDir(label.MonoScore))
				return nil
			})
		},
	}
}

func newTrainListCommand(ctx *commandContext) *cobra.Command {
	var interval int
	var selectBy string

	cmd := &cobra.Command{
		Use:   "trainlist",
		Short: "Write dev, eval, and train lists for the segmented labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.TrainList.Interval = interval
			}
			if cmd.Flags().Changed("select-by") {
				cfg.TrainList.SelectBy = selectBy
			}
			needs := preflight.Needs{Segments: []label.Kind{label.MonoScore}}
			return ctx.withPipeline(cmd, needs, func(p *pipeline.Pipeline) error {
				lists, paths, err := p.TrainList(cmd.Context())
				if err != nil {
					return err
				}
				tbl := newLabelTable(textCol("List"), numCol("Segments"), numCol("Share"))
				for _, share := range lists.Summary() {
					tbl.add(share.Name, countCell(share.Count), percentCell(share.Percent))
				}
				tbl.total("total", countCell(len(lists.Utterances)), "")
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, tbl)
				for _, path := range paths {
					fmt.Fprintf(out, "Wrote %s\n", path)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "Override train_list.interval (5-20)")
	cmd.Flags().StringVar(&selectBy, "select-by", "", "Override train_list.select_by (segment or song)")
	return cmd
}

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Copy segmented full labels into timelag, duration, and acoustic directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			needs := preflight.Needs{Segments: []label.Kind{label.FullAlign, label.FullScore}}
			return ctx.withPipeline(cmd, needs, func(p *pipeline.Pipeline) error {
				results, err := p.Finalize(cmd.Context())
				tbl := newLabelTable(textCol("Target"), textCol("Source"), textCol("Offset fixed"), numCol("Files"))
				files := 0
				for _, r := range results {
					tbl.add(r.Target.Dir, r.Target.Source.SegDir(), yesNo(r.Target.FixOffset), countCell(r.Files))
					files += r.Files
				}
				if !tbl.empty() {
					tbl.total("", "", "", countCell(files))
					fmt.Fprintln(cmd.OutOrStdout(), tbl)
				}
				return err
			})
		},
	}
}

func newReverseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "reverse PATH...",
		Short:       "Mirror label files in time, overwriting them",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := pipeline.Reverse(cmd.Context(), args, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reversed %d label files\n", len(paths))
			return nil
		},
	}
}
