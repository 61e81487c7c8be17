package video

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/animchat/internal/config"
)

func TestBuildSegmentArgs(t *testing.T) {
	params := config.SegmentParams{FPS: 24, Duration: 2, Filter: "pad=1:1", SceneIndex: 0}
	args := BuildSegmentArgs(1280, 720, "s0.mp4", params, "", 23)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-video_size 1280x720")
	assert.Contains(t, joined, "-vf pad=1:1")
	assert.Contains(t, joined, "-r 24")
	assert.Contains(t, joined, "-an")
	assert.Contains(t, joined, "-c:v libx264 -crf 23")
	assert.Equal(t, "s0.mp4", args[len(args)-1])
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	require.NoError(t, writeRawRGBA(&buf, img))
	assert.Equal(t, 3*2*4, buf.Len())

	gray := image.NewGray(image.Rect(5, 5, 9, 7))
	buf.Reset()
	require.NoError(t, writeRawRGBA(&buf, gray))
	assert.Equal(t, 4*2*4, buf.Len())
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteConcatList([]string{filepath.Join(dir, "s0.mp4"), filepath.Join(dir, "s1.mp4")}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "s0.mp4'"))
	assert.True(t, strings.HasSuffix(lines[1], "s1.mp4'"))
}

func TestSampleEncoder(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "sample_preview.mp4")
	require.NoError(t, os.WriteFile(sample, []byte("sample-bytes"), 0644))

	enc := NewSampleEncoder(sample, nil)
	ctx := context.Background()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	require.NoError(t, enc.EncodeSegment(ctx, img, filepath.Join(dir, "s0.mp4"), config.SegmentParams{}, "", 0))
	final := filepath.Join(dir, "out", "animated_preview.mp4")
	require.NoError(t, enc.Concatenate(ctx, []string{"s0.mp4"}, final, dir))

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "sample-bytes", string(data))
	assert.FileExists(t, filepath.Join(dir, "out", "animated_preview_preview.jpg"))
}

func TestSampleEncoder_MissingSample(t *testing.T) {
	enc := NewSampleEncoder(filepath.Join(t.TempDir(), "missing.mp4"), nil)
	err := enc.Concatenate(context.Background(), nil, filepath.Join(t.TempDir(), "o.mp4"), "")
	assert.Error(t, err)
}

func TestPreviewStillPath(t *testing.T) {
	assert.Equal(t, "out/x_preview.jpg", PreviewStillPath("out/x.mp4"))
}
