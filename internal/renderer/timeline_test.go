package renderer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/effects"
)

var testMotion = config.MotionConfig{ZoomRate: 0.05, PanRate: 40, MinZoom: 0.5}

func panThenStill() director.Plan {
	return director.Plan{
		{SceneID: "1", CameraMotion: "pan-right", DurationSeconds: 2},
		{SceneID: "2", CameraMotion: "none", DurationSeconds: 3},
	}
}

func TestBuildTimeline(t *testing.T) {
	tl := BuildTimeline(panThenStill(), 24, testMotion)

	require.Len(t, tl.Clips, 2)
	assert.InDelta(t, 5.0, tl.Duration, 1e-9)
	assert.Equal(t, 0.0, tl.Clips[0].Start)
	assert.Equal(t, 2.0, tl.Clips[1].Start)
	assert.Equal(t, effects.MotionPanRight, tl.Clips[0].Motion)
	assert.Equal(t, effects.MotionNone, tl.Clips[1].Motion)
}

func TestTimelineAt(t *testing.T) {
	tl := BuildTimeline(panThenStill(), 24, testMotion)

	tests := []struct {
		time    float64
		clip    int
		offsetX float64
	}{
		{0.0, 0, 0},
		{1.0, 0, 40},
		{1.5, 0, 60},
		{2.0, 1, 0},
		{4.0, 1, 0},
		{9.0, 1, 0}, // past the end
	}

	for _, tt := range tests {
		state := tl.At(tt.time)
		assert.Equal(t, tt.clip, state.Clip, "clip at %.1fs", tt.time)
		assert.InDelta(t, tt.offsetX, state.OffsetX, 1e-9, "offset at %.1fs", tt.time)
		assert.InDelta(t, 1.0, state.Scale, 1e-9)
	}
}

func TestTimelineAt_Empty(t *testing.T) {
	tl := BuildTimeline(nil, 24, testMotion)

	state := tl.At(1)
	assert.Equal(t, -1, state.Clip)
	assert.Equal(t, effects.Identity, state.Transform)
	assert.Empty(t, tl.Schedule())
}

func TestSchedule_PanThenStatic(t *testing.T) {
	tl := BuildTimeline(panThenStill(), 24, testMotion)
	samples := tl.Schedule()

	require.Len(t, samples, 120)

	prev := -1.0
	for _, s := range samples[:48] {
		assert.Equal(t, 0, s.Clip)
		assert.Greater(t, s.OffsetX, prev, "frame %d should move right", s.Frame)
		prev = s.OffsetX
	}
	for _, s := range samples[48:] {
		assert.Equal(t, 1, s.Clip)
		assert.Equal(t, effects.Identity, s.Transform)
	}
}

func TestSchedule_Idempotent(t *testing.T) {
	plan := director.Plan{
		{CameraMotion: "zoom-in", DurationSeconds: 1.5},
		{CameraMotion: "zoom-out", DurationSeconds: 2},
		{CameraMotion: "pan-left", DurationSeconds: 1},
	}

	a := BuildTimeline(plan, 24, testMotion)
	b := BuildTimeline(plan, 24, testMotion)

	assert.Equal(t, a.Duration, b.Duration)
	if diff := cmp.Diff(a.Schedule(), b.Schedule()); diff != "" {
		t.Errorf("schedules differ (-first +second):\n%s", diff)
	}
}

func TestAlignDuration(t *testing.T) {
	assert.InDelta(t, 2.0, AlignDuration(2, 24), 1e-9)
	assert.InDelta(t, 25.0/24.0, AlignDuration(1.03, 24), 1e-9)
	assert.InDelta(t, 1.0/24.0, AlignDuration(0.001, 24), 1e-9)
}
