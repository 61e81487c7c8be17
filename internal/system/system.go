package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif", ".pdf"}

// FindLatestImage returns the most recently modified still in dir.
func FindLatestImage(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		// skip the stills written next to rendered previews
		if f.IsDir() || strings.HasSuffix(f.Name(), "_preview.jpg") {
			continue
		}
		isImage := false
		for _, ext := range imageExtensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isImage = true
				break
			}
		}
		if !isImage {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no images found in %s", dir)
	}

	return latestFile, nil
}

// CheckFFmpeg verifies that ffmpeg is on PATH.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return nil
}

// ProbeDuration reads a media file duration with ffprobe.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, err
	}
	return duration, nil
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickH264Encoder(string(out))
}

func pickH264Encoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, name) {
			return name
		}
	}
	return "libx264"
}

// QualityArgs maps a quality value onto the flags of the chosen encoder.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF; quality is read as hundreds of kbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// MemorySnapshot is host memory usage at one point in time.
type MemorySnapshot struct {
	TotalMB     uint64
	UsedMB      uint64
	UsedPercent float64
}

func Memory() (MemorySnapshot, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemorySnapshot{}, err
	}
	return MemorySnapshot{
		TotalMB:     vm.Total / 1024 / 1024,
		UsedMB:      vm.Used / 1024 / 1024,
		UsedPercent: vm.UsedPercent,
	}, nil
}
