package pipeline

import (
	"context"
	"path/filepath"

	"labprep/internal/corpus"
	"labprep/internal/finalize"
	"labprep/internal/logging"
	"labprep/internal/trainlist"
)

// FullToMono regenerates mono_score labels from full_score labels.
func (p *Pipeline) FullToMono(ctx context.Context) (int, error) {
	var written int
	_, err := p.withRun(ctx, "full2mono", func(r *run) (int, int, error) {
		var err error
		written, err = p.corpus.FullToMono(ctx, p.cfg.Workers)
		r.logger.Info("mono score labels derived", logging.Int("files", written))
		return written, 0, err
	})
	return written, err
}

// TrainList writes dev/eval/train lists for the segments under out_dir.
func (p *Pipeline) TrainList(ctx context.Context) (trainlist.Lists, []string, error) {
	var (
		lists trainlist.Lists
		paths []string
	)
	_, err := p.withRun(ctx, "trainlist", func(r *run) (int, int, error) {
		names, err := p.corpus.SegmentNames()
		if err != nil {
			return 0, 0, err
		}
		lists, err = trainlist.Split(names, p.cfg.TrainList.Interval, trainlist.SelectBy(p.cfg.TrainList.SelectBy))
		if err != nil {
			return 0, len(names), err
		}
		paths, err = trainlist.Write(filepath.Join(p.cfg.OutDir, "list"), lists)
		for _, share := range lists.Summary() {
			r.logger.Info("train list",
				logging.String("list", share.Name),
				logging.Int("count", share.Count),
				logging.Float64("percent", share.Percent),
			)
		}
		return 0, len(names), err
	})
	return lists, paths, err
}

// Finalize copies segmented full labels into the model training layout.
func (p *Pipeline) Finalize(ctx context.Context) ([]finalize.Result, error) {
	var results []finalize.Result
	_, err := p.withRun(ctx, "finalize", func(r *run) (int, int, error) {
		var err error
		results, err = finalize.New(p.corpus, p.cfg.Workers, r.logger).Run(ctx)
		files := 0
		for _, res := range results {
			files += res.Files
		}
		return 0, files, err
	})
	return results, err
}

// Reverse mirrors label files in time in place. It does not take the out_dir
// lock because paths may lie anywhere.
func Reverse(ctx context.Context, inputs []string, workers int) ([]string, error) {
	paths, err := corpus.ExpandLabelPaths(inputs)
	if err != nil {
		return nil, err
	}
	return paths, corpus.ReverseFiles(ctx, paths, workers)
}
