package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Asset is one input file queued for conversion.
type Asset struct {
	// Name is the display name used in progress events, typically the
	// source file's base name.
	Name      string
	Kind      Kind
	Role      Role
	InputPath string
	// Format is the output container for images. Ignored for video, which
	// is always WebM.
	Format ImageFormat
}

// AssetResult is the outcome of converting one asset. It is populated
// exactly once and never mutated afterward.
type AssetResult struct {
	Asset      Asset
	OutputPath string
	Succeeded  bool
	// SizeBytes is the final artifact size for video. Images are never
	// measured.
	SizeBytes int64
	// Message holds a short human-readable failure reason.
	Message string
}

// Summary aggregates the outcome of one batch run.
type Summary struct {
	Processed int
	Failed    int
	OutputDir string
	Results   []AssetResult
}

// Phase identifies the stage of an asset reported by a progress event.
type Phase string

const (
	PhaseStarted  Phase = "started"
	PhaseFinished Phase = "finished"
)

// ProgressEvent is emitted once when an asset starts and once when it
// finishes. The stream is finite, forward-only and not restartable.
type ProgressEvent struct {
	Index     int
	Asset     Asset
	Phase     Phase
	Succeeded bool
	Message   string
}

// ProgressFunc receives progress events. It is called synchronously from the
// batch worker and must not block.
type ProgressFunc func(ProgressEvent)

// OrchestratorConfig holds configuration for the Orchestrator.
type OrchestratorConfig struct {
	// OutputDir is the directory all conversions write to. It is cleared
	// of files at the start of every run.
	OutputDir string
	// OnProgress receives per-asset events. Optional.
	OnProgress ProgressFunc
}

// Orchestrator sequences planner, probe and encoders over a batch of assets.
//
// Processing is strictly sequential: one asset's encode completes, including
// all internal retry attempts, before the next begins. Failures are contained
// at the single-asset boundary; no asset's outcome affects another's.
type Orchestrator struct {
	video      VideoEncoder
	image      ImageEncoder
	probe      DimensionProber
	outputDir  string
	onProgress ProgressFunc

	now func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(video VideoEncoder, image ImageEncoder, probe DimensionProber, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		video:      video,
		image:      image,
		probe:      probe,
		outputDir:  cfg.OutputDir,
		onProgress: cfg.OnProgress,
		now:        time.Now,
	}
}

// Run converts every asset in submission order and returns the aggregated
// summary. The only error it can return is a failure preparing the output
// directory; per-asset failures are reported in the summary instead.
func (o *Orchestrator) Run(ctx context.Context, assets []Asset) (*Summary, error) {
	if err := o.clearOutputDir(); err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}

	summary := &Summary{OutputDir: o.outputDir}
	stickerIndex := 0

	for i, asset := range assets {
		if asset.Role != RoleIcon {
			stickerIndex++
		}

		o.emit(ProgressEvent{Index: i, Asset: asset, Phase: PhaseStarted})

		result := o.convertOne(ctx, asset, stickerIndex)

		o.emit(ProgressEvent{
			Index:     i,
			Asset:     asset,
			Phase:     PhaseFinished,
			Succeeded: result.Succeeded,
			Message:   result.Message,
		})

		if result.Succeeded {
			summary.Processed++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// convertOne dispatches a single asset to the matching encoder. It never
// returns an error: every failure mode collapses into the result.
func (o *Orchestrator) convertOne(ctx context.Context, asset Asset, stickerIndex int) AssetResult {
	result := AssetResult{Asset: asset}
	c := ConstraintsFor(asset.Role)
	outputPath := filepath.Join(o.outputDir, o.outputName(asset, stickerIndex))
	result.OutputPath = outputPath

	switch asset.Kind {
	case KindVideo:
		src := o.probe.ProbeDimensions(ctx, asset.InputPath)
		targetW, targetH := PlanVideo(src.Width, src.Height, c.MaxEdge, c.FixedSquare)

		enc, err := o.video.EncodeVideo(ctx, asset.InputPath, outputPath, c, targetW, targetH)
		result.SizeBytes = enc.SizeBytes
		if err != nil {
			result.Message = err.Error()
			return result
		}
		if !enc.Succeeded {
			// The oversized artifact is left on disk alongside the
			// failure report.
			result.Message = fmt.Sprintf("output is %d bytes after %d attempts, budget is %d", enc.SizeBytes, enc.Attempts, c.MaxOutputBytes)
			return result
		}
		result.Succeeded = true

	case KindImage:
		format := asset.Format
		if format == "" {
			format = FormatWebP
		}
		if err := o.image.EncodeImage(ctx, asset.InputPath, outputPath, c.MaxEdge, c.FixedSquare, format); err != nil {
			result.Message = err.Error()
			return result
		}
		result.Succeeded = true

	default:
		result.Message = fmt.Sprintf("unknown asset kind: %q", asset.Kind)
	}

	return result
}

// outputName builds a filename disambiguated by index and timestamp.
// Regular assets: <role>_<index>_<ts>.<ext>. Icons: icon_<kind>_<ts>.<ext>.
func (o *Orchestrator) outputName(asset Asset, stickerIndex int) string {
	ts := o.now().Unix()

	ext := "webm"
	if asset.Kind == KindImage {
		ext = string(asset.Format)
		if ext == "" {
			ext = string(FormatWebP)
		}
	}

	if asset.Role == RoleIcon {
		kind := "video"
		if asset.Kind == KindImage {
			kind = "static"
		}
		return fmt.Sprintf("icon_%s_%d.%s", kind, ts, ext)
	}
	return fmt.Sprintf("sticker_%d_%d.%s", stickerIndex, ts, ext)
}

// clearOutputDir creates the output directory if needed and removes any file
// already present, regardless of origin. Subdirectories are left alone.
func (o *Orchestrator) clearOutputDir() error {
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	entries, err := os.ReadDir(o.outputDir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(o.outputDir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale file %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func (o *Orchestrator) emit(ev ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(ev)
	}
}
