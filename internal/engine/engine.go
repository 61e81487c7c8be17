package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/effects"
	"github.com/ivlev/animchat/internal/renderer"
	"github.com/ivlev/animchat/internal/source"
	"github.com/ivlev/animchat/internal/system"
	"github.com/ivlev/animchat/internal/video"
)

var (
	// ErrRenderFailure wraps every error returned by Render.
	ErrRenderFailure = errors.New("render failure")
	ErrEmptyPlan     = errors.New("plan has no scenes")

	// ErrDurationMismatch means the encoded file disagrees with the timeline.
	ErrDurationMismatch = errors.New("encoded duration does not match the timeline")
)

// ProbeFunc reads the duration of an encoded file in seconds.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// Artifact describes a finished preview video.
type Artifact struct {
	Path     string
	Duration float64
	Encoded  float64 // probed file duration, 0 when not probed
	Timeline renderer.Timeline
	Elapsed  time.Duration
}

// Compositor turns a plan and one still into a single preview video.
type Compositor struct {
	Config  *config.Config
	Encoder video.VideoEncoder
	Effect  effects.Effect

	// Probe, when set, checks the concatenated file against the timeline.
	Probe  ProbeFunc
	logger *zap.Logger
}

func NewCompositor(cfg *config.Config, ve video.VideoEncoder, eff effects.Effect, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{
		Config:  cfg,
		Encoder: ve,
		Effect:  eff,
		logger:  logger,
	}
}

// Render encodes one clip per scene and concatenates them in plan order into
// the configured output path, replacing whatever was there. It blocks until
// the file is written.
func (c *Compositor) Render(ctx context.Context, plan director.Plan, imagePath string) (*Artifact, error) {
	art, err := c.render(ctx, plan, imagePath)
	if err != nil {
		c.logger.Warn("render failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return art, nil
}

func (c *Compositor) render(ctx context.Context, plan director.Plan, imagePath string) (*Artifact, error) {
	startTime := time.Now()
	if plan.Empty() {
		return nil, ErrEmptyPlan
	}

	cfg := c.Config
	tl := renderer.BuildTimeline(plan, cfg.FPS, cfg.Motion)

	still, err := source.LoadStill(imagePath, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("load still %s: %w", imagePath, err)
	}
	frame := source.Fit(still, cfg.Width, cfg.Height)
	defer system.PutImage(frame)

	tempDir, err := os.MkdirTemp("", "animchat_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	c.logger.Info("rendering preview",
		zap.Int("scenes", len(tl.Clips)),
		zap.Float64("duration", tl.Duration),
		zap.String("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)),
		zap.Int("fps", cfg.FPS),
	)

	results := make([]string, len(tl.Clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for _, clip := range tl.Clips {
		g.Go(func() error {
			params := c.segmentParams(clip)
			params.Filter = c.Effect.GenerateFilter(params)

			segPath := filepath.Join(tempDir, fmt.Sprintf("s%d.mp4", clip.Index))
			if err := c.Encoder.EncodeSegment(gctx, frame, segPath, params, cfg.VideoEncoder, cfg.Quality); err != nil {
				return fmt.Errorf("scene %d (%s): %w", clip.Index+1, clip.Scene.SceneID, err)
			}
			results[clip.Index] = segPath
			c.logger.Debug("segment ready",
				zap.Int("scene", clip.Index+1),
				zap.String("motion", string(clip.Motion)),
				zap.Float64("duration", clip.Duration),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	finalPath := cfg.VideoPath()
	if err := c.Encoder.Concatenate(ctx, results, finalPath, tempDir); err != nil {
		return nil, fmt.Errorf("concatenate: %w", err)
	}

	art := &Artifact{
		Path:     finalPath,
		Duration: tl.Duration,
		Timeline: tl,
	}
	if err := c.verify(ctx, art); err != nil {
		return nil, err
	}
	art.Elapsed = time.Since(startTime)
	c.report(art)
	return art, nil
}

// verify allows two frames of container rounding, never less than 0.1s.
func (c *Compositor) verify(ctx context.Context, art *Artifact) error {
	if c.Probe == nil {
		return nil
	}
	encoded, err := c.Probe(ctx, art.Path)
	if err != nil {
		return fmt.Errorf("probe %s: %w", art.Path, err)
	}
	art.Encoded = encoded

	tolerance := math.Max(2/float64(c.Config.FPS), 0.1)
	if math.Abs(encoded-art.Duration) > tolerance {
		return fmt.Errorf("%w: file %.3fs, timeline %.3fs", ErrDurationMismatch, encoded, art.Duration)
	}
	return nil
}

func (c *Compositor) segmentParams(clip renderer.Clip) config.SegmentParams {
	return config.SegmentParams{
		Width:      c.Config.Width,
		Height:     c.Config.Height,
		FPS:        c.Config.FPS,
		Duration:   clip.Duration,
		Motion:     string(clip.Motion),
		Motions:    c.Config.Motion,
		SceneIndex: clip.Index,
	}
}

func (c *Compositor) report(art *Artifact) {
	fields := []zap.Field{
		zap.String("path", art.Path),
		zap.Float64("duration", art.Duration),
		zap.Duration("elapsed", art.Elapsed),
	}
	if art.Encoded > 0 {
		fields = append(fields, zap.Float64("encoded_duration", art.Encoded))
	}
	if !c.Config.ShowStats {
		c.logger.Info("preview ready", fields...)
		return
	}

	fields = append(fields, zap.String("build", c.Config.BuildVersion))
	if m, err := system.Memory(); err == nil {
		fields = append(fields,
			zap.Uint64("mem_used_mb", m.UsedMB),
			zap.Uint64("mem_total_mb", m.TotalMB),
			zap.Float64("mem_used_pct", m.UsedPercent),
		)
	} else {
		c.logger.Debug("memory stats unavailable", zap.Error(err))
	}
	if art.Elapsed > 0 {
		fields = append(fields, zap.Float64("realtime_factor", art.Duration/art.Elapsed.Seconds()))
	}
	c.logger.Info("preview ready", fields...)
}
