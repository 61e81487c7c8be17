package director

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarshalPlanJSON renders a plan as the downloadable animation_plan.json body.
func MarshalPlanJSON(plan Plan) ([]byte, error) {
	if plan == nil {
		plan = Plan{}
	}
	return json.MarshalIndent(plan, "", "  ")
}

// WritePlanJSON writes a plan as indented JSON, overwriting path.
func WritePlanJSON(plan Plan, path string) error {
	data, err := MarshalPlanJSON(plan)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlanJSON reads a plan file through the same parser used for generator output.
func ReadPlanJSON(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// WritePlanYAML writes a plan to a YAML file
func WritePlanYAML(plan Plan, path string) error {
	doc := PlanDocument{Version: PlanVersion, Scenes: plan}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlanYAML reads a plan from a YAML file
func ReadPlanYAML(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc PlanDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("%w: %s has no scenes", ErrParseFailure, path)
	}
	for i := range doc.Scenes {
		doc.Scenes[i].DurationSeconds = normalizeDuration(doc.Scenes[i].DurationSeconds)
	}
	return doc.Scenes, nil
}
