package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() Plan {
	return Plan{
		{SceneID: "1", ImageReference: "uploaded", CameraMotion: "zoom-in", TransitionType: "fade", Caption: "Moonrise", DurationSeconds: 3},
		{SceneID: "2", ImageReference: "uploaded", CameraMotion: "pan-right", TransitionType: "slide", Caption: "Dance", DurationSeconds: 2},
	}
}

func TestExportPath(t *testing.T) {
	path := ExportPath("output")

	assert.True(t, strings.HasPrefix(path, filepath.Join("output", "plans", "plan_")))
	assert.Equal(t, ".yaml", filepath.Ext(path))
}

func TestWritePlanJSON_FieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animation_plan.json")
	require.NoError(t, WritePlanJSON(samplePlan(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	fields := []string{"scene_id", "image_reference", "camera_motion", "transition_type", "caption", "duration_seconds"}
	last := -1
	for _, f := range fields {
		idx := strings.Index(text, `"`+f+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing %s", f)
		assert.Greater(t, idx, last, "%s out of order", f)
		last = idx
	}
	assert.Contains(t, text, "\n  {", "plan is indented")

	read, err := ReadPlanJSON(path)
	require.NoError(t, err)
	if diff := cmp.Diff(samplePlan(), read); diff != "" {
		t.Errorf("ReadPlanJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalPlanJSON_Empty(t *testing.T) {
	data, err := MarshalPlanJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPlanYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, WritePlanYAML(samplePlan(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: \"1.0\"")

	read, err := ReadPlan(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(samplePlan(), read))
}

func TestReadPlanYAML_Invalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("version: \"1.0\"\nscenes: []\n"), 0644))
	_, err := ReadPlanYAML(empty)
	assert.ErrorIs(t, err, ErrParseFailure)

	defaults := filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(defaults, []byte("scenes:\n  - scene_id: x\n"), 0644))
	plan, err := ReadPlanYAML(defaults)
	require.NoError(t, err)
	assert.Equal(t, 2.0, plan[0].DurationSeconds)
}

func TestReadPlanYAML_NonFiniteDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.yaml")
	body := "scenes:\n" +
		"  - {scene_id: a, duration_seconds: .nan}\n" +
		"  - {scene_id: b, duration_seconds: .inf}\n" +
		"  - {scene_id: c, duration_seconds: -.inf}\n" +
		"  - {scene_id: d, duration_seconds: -1}\n" +
		"  - {scene_id: e, duration_seconds: 4.5}\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	plan, err := ReadPlanYAML(path)
	require.NoError(t, err)
	require.Len(t, plan, 5)
	for _, s := range plan[:4] {
		assert.Equal(t, 2.0, s.DurationSeconds, s.SceneID)
	}
	assert.Equal(t, 4.5, plan[4].DurationSeconds)
}

func TestFindLatestPlan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plans"), 0755))

	files := []string{
		filepath.Join(dir, "animation_plan.json"),
		filepath.Join(dir, "plans", "plan_2026-02-11_15-30-00.yaml"),
		filepath.Join(dir, "plans", "plan_2026-02-13_01-00-00.yaml"),
	}
	for i, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("[]"), 0644))
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(f, modTime, modTime))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	latest, err := FindLatestPlan(dir)
	require.NoError(t, err)
	assert.Equal(t, files[len(files)-1], latest)

	_, err = FindLatestPlan(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
