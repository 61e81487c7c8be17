package director

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/animchat/internal/config"
)

const PlanVersion = "1.0"

var errNullScene = errors.New("scene is null")

// Scene is one timed segment of a planned animation.
type Scene struct {
	SceneID         string  `json:"scene_id" yaml:"scene_id"`
	ImageReference  string  `json:"image_reference" yaml:"image_reference"` // advisory, never used for rendering
	CameraMotion    string  `json:"camera_motion" yaml:"camera_motion"`
	TransitionType  string  `json:"transition_type" yaml:"transition_type"`
	Caption         string  `json:"caption" yaml:"caption"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// Plan is the ordered list of scenes produced by one prompt.
type Plan []Scene

// PlanDocument is the YAML form of a plan.
type PlanDocument struct {
	Version string `yaml:"version"`
	Scenes  Plan   `yaml:"scenes"`
}

func (p Plan) Empty() bool {
	return len(p) == 0
}

// TotalDuration returns the sum of scene durations in seconds.
func (p Plan) TotalDuration() float64 {
	total := 0.0
	for _, s := range p {
		total += s.DurationSeconds
	}
	return total
}

// UnmarshalJSON accepts loosely shaped scene objects. Missing keys stay empty,
// scalar ids are stringified and a missing or unusable duration becomes the default.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errNullScene
	}

	*s = Scene{
		SceneID:         looseString(raw["scene_id"]),
		ImageReference:  looseString(raw["image_reference"]),
		CameraMotion:    looseString(raw["camera_motion"]),
		TransitionType:  looseString(raw["transition_type"]),
		Caption:         looseString(raw["caption"]),
		DurationSeconds: looseDuration(raw["duration_seconds"]),
	}
	return nil
}

func looseString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// numbers and booleans keep their literal form
	if v[0] != '{' && v[0] != '[' {
		return string(v)
	}
	return ""
}

func looseDuration(v json.RawMessage) float64 {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return config.DefaultDuration
	}

	var d float64
	if err := json.Unmarshal(v, &d); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return config.DefaultDuration
		}
		d, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return config.DefaultDuration
		}
	}
	return normalizeDuration(d)
}

// normalizeDuration replaces non-positive and non-finite durations with the default.
func normalizeDuration(d float64) float64 {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return config.DefaultDuration
	}
	return d
}
