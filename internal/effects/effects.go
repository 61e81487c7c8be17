package effects

import (
	"fmt"
	"math"

	"github.com/ivlev/animchat/internal/config"
)

type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// MotionEffect renders the Motion law with a single zoompan pass.
//
// The fitted still is padded onto a canvas CanvasScale times the frame so
// that zoompan (which cannot go below zoom 1) can also shrink it, and so a
// pan has room to travel r·t for the whole clip. zoompan zoom is
// scale·CanvasScale, so scale 1 shows the still at its fitted size.
type MotionEffect struct{}

func (e *MotionEffect) GenerateFilter(p config.SegmentParams) string {
	mc := p.Motions
	if mc.MinZoom <= 0 || mc.MinZoom > 1 {
		mc.MinZoom = 1
	}
	frames := FrameCount(p.Duration, p.FPS)
	m := ParseMotion(p.Motion)
	factor := CanvasScale(m, p.Width, p.Duration, mc)
	padW, padH := PaddedCanvas(p.Width, p.Height, factor)

	zExpr, xExpr := motionExpressions(m, p.FPS, factor, mc)

	padFilter := fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", padW, padH)
	zoomFilter := fmt.Sprintf(
		"zoompan=z='%s':x='%s':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d",
		zExpr, xExpr, frames, p.Width, p.Height, p.FPS,
	)

	return fmt.Sprintf("%s,%s,setsar=1", padFilter, zoomFilter)
}

func motionExpressions(m Motion, fps int, base float64, mc config.MotionConfig) (zExpr, xExpr string) {
	t := fmt.Sprintf("(on/%d)", fps)
	center := "iw/2-(iw/zoom/2)"

	zExpr = fmt.Sprintf("%.6f", base)
	xExpr = center

	switch m {
	case MotionZoomIn:
		zExpr = fmt.Sprintf("(1+%.6f*%s)*%.6f", mc.ZoomRate, t, base)
	case MotionZoomOut:
		zExpr = fmt.Sprintf("max((1-%.6f*%s)*%.6f,1)", mc.ZoomRate, t, base)
	case MotionPanLeft:
		// the window moves right so the still drifts left
		xExpr = fmt.Sprintf("%s+%.6f*%s", center, mc.PanRate, t)
	case MotionPanRight:
		xExpr = fmt.Sprintf("%s-%.6f*%s", center, mc.PanRate, t)
	}
	return zExpr, xExpr
}

// FrameCount returns the number of frames a clip of duration seconds needs.
func FrameCount(duration float64, fps int) int {
	n := int(math.Round(duration * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// CanvasScale is the padded canvas size in frames. It covers the zoom-out
// floor, and for pans a travel of PanRate·duration to either side.
func CanvasScale(m Motion, width int, duration float64, mc config.MotionConfig) float64 {
	factor := 1 / mc.MinZoom
	if (m == MotionPanLeft || m == MotionPanRight) && width > 0 {
		factor = math.Max(factor, 1+2*mc.PanRate*duration/float64(width))
	}
	return factor
}

// PaddedCanvas returns the even canvas size for a frame scaled by factor.
func PaddedCanvas(width, height int, factor float64) (int, int) {
	return even(float64(width) * factor), even(float64(height) * factor)
}

func even(v float64) int {
	n := int(math.Ceil(v))
	if n%2 != 0 {
		n++
	}
	return n
}
