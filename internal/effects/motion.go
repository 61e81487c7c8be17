package effects

import (
	"math"

	"github.com/ivlev/animchat/internal/config"
)

// Motion is a named camera move applied over one scene.
type Motion string

const (
	MotionNone     Motion = "none"
	MotionZoomIn   Motion = "zoom-in"
	MotionZoomOut  Motion = "zoom-out"
	MotionPanLeft  Motion = "pan-left"
	MotionPanRight Motion = "pan-right"
)

// ParseMotion matches s exactly against the known motions. Anything else,
// including the empty string, is MotionNone.
func ParseMotion(s string) Motion {
	switch m := Motion(s); m {
	case MotionZoomIn, MotionZoomOut, MotionPanLeft, MotionPanRight:
		return m
	}
	return MotionNone
}

// Transform is the camera state of a clip at one instant.
// Scale 1 shows the still fitted to the frame; OffsetX is in output pixels,
// positive to the right.
type Transform struct {
	Scale   float64
	OffsetX float64
}

var Identity = Transform{Scale: 1}

// At returns the transform t seconds into a clip.
func (m Motion) At(t float64, mc config.MotionConfig) Transform {
	if t < 0 {
		t = 0
	}
	switch m {
	case MotionZoomIn:
		return Transform{Scale: 1 + mc.ZoomRate*t}
	case MotionZoomOut:
		return Transform{Scale: math.Max(1-mc.ZoomRate*t, mc.MinZoom)}
	case MotionPanLeft:
		return Transform{Scale: 1, OffsetX: -mc.PanRate * t}
	case MotionPanRight:
		return Transform{Scale: 1, OffsetX: mc.PanRate * t}
	default:
		return Identity
	}
}
