package renderer

import (
	"github.com/ivlev/animchat/internal/config"
	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/effects"
)

// Clip is one scene placed on the timeline.
type Clip struct {
	Index    int
	Scene    director.Scene
	Motion   effects.Motion
	Start    float64
	Duration float64
}

func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// CameraState is the camera of the whole timeline at a specific moment
type CameraState struct {
	Clip  int     // index of the active clip, -1 for an empty timeline
	Local float64 // seconds since the active clip started
	effects.Transform
}

// Timeline lays clips end to end. Each clip computes its transform from its
// own local time only, so neighbors never affect each other.
type Timeline struct {
	Clips    []Clip
	Duration float64
	FPS      int
	motion   config.MotionConfig
}

// BuildTimeline places every scene of plan in order, with durations aligned to whole frames.
func BuildTimeline(plan director.Plan, fps int, mc config.MotionConfig) Timeline {
	tl := Timeline{FPS: fps, motion: mc}
	start := 0.0
	for i, scene := range plan {
		d := AlignDuration(scene.DurationSeconds, fps)
		tl.Clips = append(tl.Clips, Clip{
			Index:    i,
			Scene:    scene,
			Motion:   effects.ParseMotion(scene.CameraMotion),
			Start:    start,
			Duration: d,
		})
		start += d
	}
	tl.Duration = start
	return tl
}

// AlignDuration rounds seconds to the nearest whole frame (at least one).
func AlignDuration(seconds float64, fps int) float64 {
	return float64(effects.FrameCount(seconds, fps)) / float64(fps)
}

// At calculates the camera state at timeline time t
func (tl Timeline) At(t float64) CameraState {
	if len(tl.Clips) == 0 {
		return CameraState{Clip: -1, Transform: effects.Identity}
	}
	if t < 0 {
		t = 0
	}

	clip := tl.Clips[len(tl.Clips)-1]
	for _, c := range tl.Clips {
		if t < c.End() {
			clip = c
			break
		}
	}

	local := t - clip.Start
	if local > clip.Duration {
		local = clip.Duration
	}
	return CameraState{
		Clip:      clip.Index,
		Local:     local,
		Transform: clip.Motion.At(local, tl.motion),
	}
}

// Sample is the camera state at one output frame.
type Sample struct {
	Frame int
	Time  float64
	CameraState
}

// Schedule samples the camera at every output frame.
func (tl Timeline) Schedule() []Sample {
	if tl.FPS <= 0 {
		return nil
	}
	frames := 0
	for _, c := range tl.Clips {
		frames += effects.FrameCount(c.Duration, tl.FPS)
	}

	samples := make([]Sample, 0, frames)
	for f := 0; f < frames; f++ {
		t := float64(f) / float64(tl.FPS)
		samples = append(samples, Sample{Frame: f, Time: t, CameraState: tl.At(t)})
	}
	return samples
}
