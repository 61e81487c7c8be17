package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// LocalGenerator answers without any network call. Its reply is a short
// acknowledgement followed by a plan built around the idea, so the output
// exercises the same bracket recovery as hosted replies wrapped in prose.
// The acknowledgement never contains brackets; the array must hold the first '['.
type LocalGenerator struct{}

func (LocalGenerator) Name() string { return "local" }

func (LocalGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &GenerationError{Backend: "local", Err: err}
	}
	idea := IdeaFromPrompt(prompt)
	if idea == "" {
		idea = "your image"
	}

	scenes := []map[string]any{
		{"scene_id": "1", "image_reference": "uploaded_image", "camera_motion": "zoom-in", "transition_type": "fade", "caption": "Opening: " + idea, "duration_seconds": 2},
		{"scene_id": "2", "image_reference": "uploaded_image", "camera_motion": "pan-right", "transition_type": "cut", "caption": idea, "duration_seconds": 3},
		{"scene_id": "3", "image_reference": "uploaded_image", "camera_motion": "zoom-out", "transition_type": "fade", "caption": "Closing", "duration_seconds": 2},
	}
	data, err := json.MarshalIndent(scenes, "", "  ")
	if err != nil {
		return "", &GenerationError{Backend: "local", Err: err}
	}

	return fmt.Sprintf("That's a fun idea! I'll animate **%s** with smooth transitions and vibrant effects.\n\n%s", proseSafe.Replace(idea), data), nil
}

var proseSafe = strings.NewReplacer("[", "(", "]", ")")
