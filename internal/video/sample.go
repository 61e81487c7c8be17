package video

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/config"
)

// SampleEncoder is the placeholder backend: it ignores the plan and copies a
// fixed sample video to the output path, plus a JPEG of the still next to it.
type SampleEncoder struct {
	SamplePath string
	logger     *zap.Logger

	mu    sync.Mutex
	still image.Image
}

func NewSampleEncoder(samplePath string, logger *zap.Logger) *SampleEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SampleEncoder{SamplePath: samplePath, logger: logger}
}

func (e *SampleEncoder) EncodeSegment(ctx context.Context, img image.Image, videoPath string, params config.SegmentParams, encoderName string, quality int) error {
	e.logger.Debug("sample encoder: segment requested",
		zap.Int("scene", params.SceneIndex), zap.String("output", videoPath))

	e.mu.Lock()
	if e.still == nil {
		e.still = img
	}
	e.mu.Unlock()
	return ctx.Err()
}

func (e *SampleEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return err
	}

	e.mu.Lock()
	still := e.still
	e.still = nil
	e.mu.Unlock()

	if still != nil {
		if err := writePreviewJPEG(still, PreviewStillPath(finalPath)); err != nil {
			return err
		}
	}

	if err := copyFile(e.SamplePath, finalPath); err != nil {
		return fmt.Errorf("copy sample video: %w", err)
	}
	e.logger.Info("placeholder demo video generated",
		zap.String("sample", e.SamplePath), zap.String("output", finalPath))
	return nil
}

// PreviewStillPath maps out.mp4 to out_preview.jpg.
func PreviewStillPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_preview.jpg"
}

func writePreviewJPEG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
