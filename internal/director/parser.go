package director

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailure is returned when generator output holds no usable plan.
var ErrParseFailure = errors.New("scene plan parse failure")

// Parse converts raw generator output into a Plan.
//
// The whole text is tried as a JSON array first. If that fails, the slice
// between the first '[' and the last ']' is tried instead. Any other outcome
// yields an empty plan and an error wrapping ErrParseFailure.
func Parse(text string) (Plan, error) {
	plan, strictErr := parseArray(text)
	if strictErr == nil {
		return plan, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON array found: %v", ErrParseFailure, strictErr)
	}

	plan, err := parseArray(text[start : end+1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return plan, nil
}

func parseArray(text string) (Plan, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("plan has no scenes")
	}

	plan := make(Plan, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("scene %d is not an object", i+1)
		}
		var scene Scene
		if err := json.Unmarshal(item, &scene); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		plan = append(plan, scene)
	}
	return plan, nil
}
