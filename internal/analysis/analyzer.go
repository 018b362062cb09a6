package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"camtrace/internal/attribution"
	"camtrace/internal/camera"
	"camtrace/internal/config"
	"camtrace/internal/discovery"
	"camtrace/internal/logging"
	"camtrace/internal/metadata"
	"camtrace/internal/registry"
	"camtrace/internal/services"
	"camtrace/internal/sidecar"
	"camtrace/internal/thumbnail"
)

// Analyzer runs the attribution pipeline. It holds no per-run state, so one
// Analyzer may serve concurrent Run calls.
type Analyzer struct {
	cfg       *config.Config
	extractor metadata.Extractor
	thumbs    thumbnail.Finder
	logger    *slog.Logger
	walker    *discovery.Walker
	parser    *sidecar.Parser
	now       func() time.Time
	newRunID  func() string
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithWalker replaces the filesystem walker.
func WithWalker(w *discovery.Walker) Option {
	return func(a *Analyzer) {
		if w != nil {
			a.walker = w
		}
	}
}

// WithClock overrides the timestamp source used for StartedAt/FinishedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRunIDFunc overrides run ID generation.
func WithRunIDFunc(fn func() string) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.newRunID = fn
		}
	}
}

// New constructs an Analyzer. A nil extractor defaults to the ffprobe-backed
// extractor; a nil thumbs disables thumbnail lookup.
func New(cfg *config.Config, extractor metadata.Extractor, thumbs thumbnail.Finder, logger *slog.Logger, opts ...Option) *Analyzer {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if extractor == nil {
		extractor = metadata.NewProbeExtractor(cfg, logger)
	}
	a := &Analyzer{
		cfg:       cfg,
		extractor: extractor,
		thumbs:    thumbs,
		logger:    logging.NewComponentLogger(logger, "analysis"),
		walker:    discovery.NewWalker(cfg, logger),
		parser:    sidecar.New(cfg),
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes root and returns the complete result. Progress events are
// sent on events when it is non-nil; the caller owns the channel and must
// drain it until Run returns. Cancelling ctx aborts in-flight external tool
// calls (those files become unknown) and stops event delivery; it does not
// abort the run.
func (a *Analyzer) Run(ctx context.Context, root string, events chan<- camera.ProgressEvent) (*camera.AnalysisResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := a.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, a.logger)
	progress := newReporter(ctx, events)
	started := a.now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &Error{Root: root, Op: "resolve root", Err: services.Wrap(services.ErrValidation, "analysis", "resolve root", root, err)}
	}
	logger.Info("analysis started", logging.String("root", absRoot), logging.Int("workers", a.cfg.Analysis.Workers))

	// SIDECAR_SCAN
	progress.emit(camera.PhaseSidecarScan, "Scanning for camera descriptors", sidecarStart, "")
	walk, err := a.walker.Walk(absRoot)
	if err != nil {
		logging.ErrorWithContext(logger, "analysis aborted", "root_unavailable",
			logging.String("root", absRoot),
			logging.Error(err),
			logging.String("error_kind", services.Classify(err)),
			logging.String(logging.FieldErrorHint, "check that the root exists and is a readable directory"),
		)
		return nil, &Error{Root: absRoot, Op: "walk root", Err: err}
	}
	identities, descriptors := a.scanSidecars(services.WithPhase(ctx, string(camera.PhaseSidecarScan)), walk.Sidecars, progress)
	reg := a.buildRegistry(ctx, identities)

	// VIDEO_DISCOVERY
	progress.emit(camera.PhaseVideoDiscovery, "Discovering video files", sidecarEnd, "")
	logging.WithContext(services.WithPhase(ctx, string(camera.PhaseVideoDiscovery)), a.logger).Info("videos discovered",
		logging.Int("videos", len(walk.Videos)),
		logging.Int("skipped_dirs", len(walk.Skipped)),
	)
	progress.emit(camera.PhaseVideoDiscovery, fmt.Sprintf("Found %d video files", len(walk.Videos)), discoveryEnd, "")

	// METADATA_EXTRACTION
	records := a.extractAll(services.WithPhase(ctx, string(camera.PhaseMetadataExtraction)), walk.Videos, progress)

	// GROUPING
	progress.emit(camera.PhaseGrouping, fmt.Sprintf("Grouping %d files", len(records)), extractionEnd, "")
	groupLogger := logging.WithContext(services.WithPhase(ctx, string(camera.PhaseGrouping)), a.logger)
	cameras, unknown := attribution.Group(records, reg, groupLogger)
	stats := attribution.ComputeStats(records)
	progress.emit(camera.PhaseGrouping, fmt.Sprintf("Grouped into %d cameras", len(cameras)), groupingEnd, "")

	// MIXED_DETECTION
	progress.emit(camera.PhaseMixedDetection, "Checking folders for mixed cameras", groupingEnd, "")
	mixed := attribution.DetectMixed(attribution.AttributedRecords(cameras))
	for _, report := range mixed {
		logging.WarnWithContext(
			logging.WithContext(services.WithPhase(ctx, string(camera.PhaseMixedDetection)), a.logger),
			"folder holds footage from multiple cameras",
			"mixed_folder",
			logging.String("folder", report.Folder),
			logging.Any("camera_serials", report.CameraSerials),
			logging.String(logging.FieldErrorHint, "split the folder per camera before ingest"),
			logging.String(logging.FieldImpact, "folder-level camera assumptions do not hold"),
		)
	}
	progress.emit(camera.PhaseMixedDetection, fmt.Sprintf("%d mixed folders", len(mixed)), mixedEnd, "")

	result := &camera.AnalysisResult{
		RunID:        runID,
		Root:         absRoot,
		StartedAt:    started,
		FinishedAt:   a.now(),
		Cameras:      cameras,
		UnknownFiles: unknown,
		MixedFolders: mixed,
		Stats:        stats,
		Descriptors:  descriptors,
		Conflicts:    reg.Conflicts,
	}

	logger.Info("analysis completed",
		logging.Int("cameras", len(cameras)),
		logging.Int("attributed_files", result.AttributedFiles()),
		logging.Int("unknown_files", len(unknown)),
		logging.Int("mixed_folders", len(mixed)),
		logging.Int64("total_size_bytes", stats.TotalSizeBytes),
		logging.Duration("elapsed", result.FinishedAt.Sub(started)),
	)
	progress.emit(camera.PhaseDone, "Analysis complete", completePercent, "")
	return result, nil
}

func (a *Analyzer) scanSidecars(ctx context.Context, paths []string, progress *reporter) ([]camera.IdentityRecord, camera.DescriptorStats) {
	logger := logging.WithContext(ctx, a.logger)
	stats := camera.DescriptorStats{Found: len(paths)}
	records := make([]camera.IdentityRecord, 0, len(paths))

	for i, path := range paths {
		result := a.parser.ParseFile(path)
		switch {
		case result.HasIdentity():
			stats.WithIdentity++
			records = append(records, *result.Record)
			logger.Debug("descriptor parsed",
				logging.String(logging.FieldFile, path),
				logging.String("descriptor_kind", string(result.Kind)),
				logging.String("camera_id", result.Record.SerialNumber),
				logging.String("camera_model", result.Record.Model),
				logging.Int("references", len(result.Record.ReferencedVideoPaths)),
			)
		case result.Uninformative():
			stats.Uninformative++
			logger.Debug("descriptor carries no camera identity",
				logging.String(logging.FieldFile, path),
				logging.String("descriptor_kind", string(result.Kind)),
			)
		case result.Kind == sidecar.KindUnknown:
			stats.Skipped++
			logger.Debug("descriptor schema not recognized", logging.String(logging.FieldFile, path))
		default:
			stats.Skipped++
			logging.WarnWithContext(logger, "descriptor skipped", "descriptor_skipped",
				logging.String(logging.FieldFile, path),
				logging.String("descriptor_kind", string(result.Kind)),
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, "check the sidecar is a complete camera-written XML file"),
				logging.String(logging.FieldImpact, "files it references fall back to embedded metadata"),
			)
		}
		progress.emit(camera.PhaseSidecarScan, fmt.Sprintf("Parsed descriptor %d of %d", i+1, len(paths)),
			interpolate(sidecarStart, sidecarEnd, i+1, len(paths)), path)
	}

	logger.Info("sidecar scan completed",
		logging.Int("descriptors", stats.Found),
		logging.Int("descriptors_with_identity", stats.WithIdentity),
		logging.Int("descriptors_skipped", stats.Skipped),
	)
	return records, stats
}

func (a *Analyzer) buildRegistry(ctx context.Context, records []camera.IdentityRecord) *registry.Registry {
	logger := logging.WithContext(services.WithPhase(ctx, string(camera.PhaseSidecarScan)), a.logger)
	policy, err := registry.ParsePolicy(a.cfg.Analysis.CollisionPolicy)
	if err != nil {
		// Config validation rejects unknown policies; this only triggers for
		// hand-built configs.
		logging.WarnWithContext(logger, "unknown collision policy, using first", "config_fallback",
			logging.String("policy", a.cfg.Analysis.CollisionPolicy),
			logging.Error(err),
		)
		policy = registry.PolicyFirst
	}

	reg := registry.Build(records, policy)
	for _, c := range reg.Conflicts {
		logging.WarnWithContext(logger, "descriptor identity conflict", "registry_conflict",
			logging.String("conflict_kind", c.Kind),
			logging.String("key", c.Key),
			logging.String("kept", c.Kept),
			logging.String("dropped", c.Dropped),
			logging.String("policy", string(policy)),
			logging.String(logging.FieldErrorHint, "remove stale or duplicated sidecars"),
			logging.String(logging.FieldImpact, "conflicting descriptor ignored for attribution"),
		)
	}
	logger.Debug("identity registry built",
		logging.Int("serials", reg.Len()),
		logging.Int("conflicts", len(reg.Conflicts)),
	)
	return reg
}

// extractAll builds one MediaRecord per path. The returned slice is indexed
// by discovery position.
func (a *Analyzer) extractAll(ctx context.Context, paths []string, progress *reporter) []camera.MediaRecord {
	logger := logging.WithContext(ctx, a.logger)
	records := make([]camera.MediaRecord, len(paths))
	total := len(paths)
	if total == 0 {
		progress.emit(camera.PhaseMetadataExtraction, "No video files to inspect", extractionEnd, "")
		return records
	}

	workers := a.cfg.Analysis.Workers
	if workers <= 0 {
		workers = 1
	}
	var (
		group     errgroup.Group
		completed atomic.Int64
		failedMu  sync.Mutex
		failed    int
	)
	group.SetLimit(workers)

	for i, path := range paths {
		group.Go(func() error {
			rec := a.inspect(ctx, logger, path)
			if rec.ExtractionError != "" {
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
			records[i] = rec
			done := int(completed.Add(1))
			progress.emit(camera.PhaseMetadataExtraction, fmt.Sprintf("Inspected %d of %d", done, total),
				interpolate(discoveryEnd, extractionEnd, done, total), path)
			return nil
		})
	}
	_ = group.Wait()

	logger.Info("metadata extraction completed",
		logging.Int("videos", total),
		logging.Int("extraction_failures", failed),
	)
	return records
}

func (a *Analyzer) inspect(ctx context.Context, logger *slog.Logger, path string) camera.MediaRecord {
	fileCtx := services.WithFile(ctx, path)
	meta, err := a.extractor.Extract(fileCtx, path)
	var rec camera.MediaRecord
	if err != nil {
		attrs := []logging.Attr{
			logging.String(logging.FieldFile, path),
			logging.Error(err),
			logging.String("error_kind", services.Classify(err)),
			logging.String(logging.FieldImpact, "file listed as unknown"),
		}
		if errors.Is(err, services.ErrExternalTool) {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, "run camtrace status to check ffprobe"))
		}
		logging.WarnWithContext(logger, "metadata extraction failed", "extraction_failed", attrs...)
		rec = camera.FailedMediaRecord(path, err)
	} else {
		rec = camera.NewMediaRecord(path, meta)
	}

	if a.thumbs != nil {
		thumb, terr := a.thumbs.FindOrGenerate(fileCtx, path)
		if terr != nil {
			logger.Debug("thumbnail unavailable", logging.String(logging.FieldFile, path), logging.Error(terr))
		} else {
			rec.Thumbnail = thumb
		}
	}
	return rec
}
