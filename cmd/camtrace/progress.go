package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"camtrace/internal/camera"
	"camtrace/internal/logging"
)

// progressRenderer shows analysis progress as a bar on terminals and as
// sampled log lines elsewhere.
type progressRenderer struct {
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newProgressRenderer(w io.Writer, logger *slog.Logger, enabled bool) *progressRenderer {
	r := &progressRenderer{logger: logger}
	if !enabled {
		return r
	}
	if isTerminal(w) {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(camera.PhaseSidecarScan.Label()),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		return r
	}
	r.sampler = logging.NewProgressSampler(10)
	return r
}

func (r *progressRenderer) Update(ev camera.ProgressEvent) {
	if r.bar != nil {
		r.bar.Describe(ev.Phase.Label())
		_ = r.bar.Set(int(ev.Percent))
		return
	}
	if r.sampler == nil || r.logger == nil {
		return
	}
	if r.sampler.Allow(string(ev.Phase), ev.Percent) {
		r.logger.Info("analysis progress",
			logging.String(logging.FieldPhase, string(ev.Phase)),
			logging.Float64("percent", ev.Percent),
			logging.String("detail", ev.Message),
		)
	}
}

func (r *progressRenderer) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
