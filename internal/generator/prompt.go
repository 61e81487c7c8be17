package generator

import "strings"

const (
	ideaPrefix = "Animation idea: "
	ideaSuffix = "\nReturn the scene plan as a JSON array."
)

// SystemPrompt tells the model the scene schema it must answer with.
const SystemPrompt = `You are an animation director. The user has uploaded a single still image and describes how it should be animated.
Answer ONLY with a JSON array of scenes. Each scene is an object with these fields:
  "scene_id"          string, "1", "2", ...
  "image_reference"   string, always "uploaded_image"
  "camera_motion"     one of "zoom-in", "zoom-out", "pan-left", "pan-right", "none"
  "transition_type"   string, e.g. "fade" or "cut"
  "caption"           short text describing the scene
  "duration_seconds"  number of seconds, between 1 and 6
Use 2 to 5 scenes. Do not wrap the array in markdown.`

// FallbackPlanText is the static plan used when generation fails and the
// fallback policy is enabled.
const FallbackPlanText = `[
  {"scene_id": "1", "image_reference": "uploaded_image", "camera_motion": "zoom-in", "transition_type": "fade", "caption": "Slow push into the subject", "duration_seconds": 3},
  {"scene_id": "2", "image_reference": "uploaded_image", "camera_motion": "pan-right", "transition_type": "cut", "caption": "Drift across the scene", "duration_seconds": 3},
  {"scene_id": "3", "image_reference": "uploaded_image", "camera_motion": "zoom-out", "transition_type": "fade", "caption": "Pull back to reveal", "duration_seconds": 3}
]`

// UserPrompt frames the user's idea for the model.
func UserPrompt(idea string) string {
	return ideaPrefix + idea + ideaSuffix
}

// IdeaFromPrompt strips the UserPrompt framing. Unframed text is returned as is.
func IdeaFromPrompt(prompt string) string {
	if strings.HasPrefix(prompt, ideaPrefix) && strings.HasSuffix(prompt, ideaSuffix) {
		prompt = prompt[len(ideaPrefix) : len(prompt)-len(ideaSuffix)]
	}
	return strings.TrimSpace(prompt)
}
