package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"camtrace/internal/analysis"
	"camtrace/internal/camera"
	"camtrace/internal/config"
	"camtrace/internal/logging"
	"camtrace/internal/metadata"
	"camtrace/internal/preflight"
	"camtrace/internal/thumbnail"
)

// runOptions are the per-invocation overrides shared by analyze and export.
type runOptions struct {
	workers  int
	policy   string
	progress bool
}

func bindRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent metadata extractions (default from config)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Descriptor collision policy: first, last or reject")
	cmd.Flags().BoolVar(&opts.progress, "progress", true, "Show progress while analyzing")
}

func (o runOptions) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if o.workers != 0 {
		cfg.Analysis.Workers = o.workers
	}
	if policy := strings.ToLower(strings.TrimSpace(o.policy)); policy != "" {
		cfg.Analysis.CollisionPolicy = policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// executeAnalysis runs one analysis with progress rendering. A cancelled
// command context turns into an error even though the run itself completes.
func executeAnalysis(cmd *cobra.Command, ctx *commandContext, root string, opts runOptions) (*camera.AnalysisResult, error) {
	base, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := opts.apply(base)
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	root, err = config.ExpandPath(strings.TrimSpace(root))
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	for _, failed := range preflight.Failed(preflight.RunAll(runCtx, cfg, "")) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("reason", failed.Detail),
			logging.String(logging.FieldErrorHint, "run camtrace status for details"),
			logging.String(logging.FieldImpact, "affected files may be listed as unknown"),
		)
	}

	analyzer := analysis.New(cfg,
		metadata.NewProbeExtractor(cfg, logger),
		thumbnail.NewLocator(cfg, logger),
		logger,
	)

	renderer := newProgressRenderer(cmd.ErrOrStderr(), logger, opts.progress)
	events := make(chan camera.ProgressEvent, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range events {
			renderer.Update(ev)
		}
	}()

	result, err := analyzer.Run(runCtx, root, events)
	close(events)
	<-drained
	renderer.Finish()

	if err != nil {
		return nil, err
	}
	if ctxErr := runCtx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return result, nil
}
