package director

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StrictArray(t *testing.T) {
	text := `[
		{"scene_id":"1","image_reference":"cat.png","camera_motion":"zoom-in","transition_type":"fade","caption":"A cat wakes","duration_seconds":3},
		{"scene_id":"2","image_reference":"cat.png","camera_motion":"pan-left","transition_type":"cut","caption":"It walks","duration_seconds":2.5}
	]`

	plan, err := Parse(text)
	require.NoError(t, err)

	want := Plan{
		{SceneID: "1", ImageReference: "cat.png", CameraMotion: "zoom-in", TransitionType: "fade", Caption: "A cat wakes", DurationSeconds: 3},
		{SceneID: "2", ImageReference: "cat.png", CameraMotion: "pan-left", TransitionType: "cut", Caption: "It walks", DurationSeconds: 2.5},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	var generic []any
	require.NoError(t, json.Unmarshal([]byte(text), &generic))
	assert.Len(t, plan, len(generic))
}

func TestParse_RecoversFromProse(t *testing.T) {
	text := "The plan:\n[{\"scene_id\":\"1\",\"camera_motion\":\"zoom-in\",\"duration_seconds\":3}]\nEnjoy!"

	plan, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "1", plan[0].SceneID)
	assert.Equal(t, "zoom-in", plan[0].CameraMotion)
	assert.Equal(t, 3.0, plan[0].DurationSeconds)

	bounded, err := Parse(`[{"scene_id":"1","camera_motion":"zoom-in","duration_seconds":3}]`)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(bounded, plan))
}

func TestParse_RecoversFromCodeFence(t *testing.T) {
	text := "```json\n[{\"scene_id\":\"a\",\"camera_motion\":\"pan-right\"}]\n```"

	plan, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "pan-right", plan[0].CameraMotion)
	assert.Equal(t, 2.0, plan[0].DurationSeconds)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain prose", "not json at all"},
		{"empty", ""},
		{"only open bracket", "here [ it comes"},
		{"reversed brackets", "] then ["},
		{"malformed inside brackets", "plan: [{\"scene_id\": 1,,}] done"},
		{"empty array", "[]"},
		{"object not array", `{"scene_id":"1"}`},
		{"non-object elements", `[1, 2, 3]`},
		{"mixed elements", `[{"scene_id":"1"}, "two"]`},
		{"null element", `[null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var plan Plan
			var err error
			require.NotPanics(t, func() { plan, err = Parse(tt.text) })
			assert.ErrorIs(t, err, ErrParseFailure)
			assert.True(t, plan.Empty())
		})
	}
}

func TestParse_LooseFields(t *testing.T) {
	text := `[
		{"scene_id": 7},
		{"scene_id": "b", "duration_seconds": "4.5"},
		{"scene_id": "c", "duration_seconds": "long"},
		{"scene_id": "d", "duration_seconds": -1},
		{"scene_id": "e", "duration_seconds": null, "camera_motion": null}
	]`

	plan, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, plan, 5)

	assert.Equal(t, "7", plan[0].SceneID)
	assert.Equal(t, 2.0, plan[0].DurationSeconds)
	assert.Empty(t, plan[0].CameraMotion)
	assert.Equal(t, 4.5, plan[1].DurationSeconds)
	assert.Equal(t, 2.0, plan[2].DurationSeconds)
	assert.Equal(t, 2.0, plan[3].DurationSeconds)
	assert.Equal(t, 2.0, plan[4].DurationSeconds)
	assert.Empty(t, plan[4].CameraMotion)
}

func TestPlan_TotalDuration(t *testing.T) {
	plan := Plan{{DurationSeconds: 2}, {DurationSeconds: 3.5}}
	assert.Equal(t, 5.5, plan.TotalDuration())
	assert.False(t, plan.Empty())
	assert.True(t, Plan(nil).Empty())
}
