package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/system"
)

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, img image.Image, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error
}

// FFmpegEncoder drives the system ffmpeg binary.
type FFmpegEncoder struct {
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "ffmpeg"
}

// EncodeSegment feeds img as a single raw RGBA frame; the zoompan filter in
// params expands it to the full clip.
func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	img image.Image,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	inputW, inputH := img.Bounds().Dx(), img.Bounds().Dy()

	args := BuildSegmentArgs(inputW, inputH, videoPath, params, encoderName, quality)

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write raw error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg segment %d error: %w, output: %s", params.SceneIndex, err, out.String())
	}

	return nil
}

// BuildSegmentArgs returns the ffmpeg arguments for one visual-only clip.
func BuildSegmentArgs(
	inputW, inputH int,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	if encoderName == "" {
		encoderName = "libx264"
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-i", "-",
		"-vf", params.Filter,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}
	args = append(args, system.QualityArgs(encoderName, quality)...)
	args = append(args, videoPath)
	return args
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Concatenate joins segments in order with the concat demuxer, overwriting finalPath.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	concatFilePath, err := WriteConcatList(segmentPaths, tmpDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, e.binary(), "-y",
		"-f", "concat", "-safe", "0", "-i", concatFilePath,
		"-c", "copy", "-an", "-movflags", "+faststart", finalPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
	}
	return nil
}

// WriteConcatList writes the concat demuxer input list into tmpDir.
func WriteConcatList(segmentPaths []string, tmpDir string) (string, error) {
	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	f, err := os.Create(concatFilePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, p := range segmentPaths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return "", err
		}
	}
	return concatFilePath, nil
}
