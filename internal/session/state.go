package session

import "encoding/json"

// State is where the session is in the plan/render cycle.
type State int

const (
	Idle State = iota
	PlanRequested
	PlanReady
	PlanFailed
	RenderRequested
	RenderComplete
	RenderFailed
)

var stateNames = [...]string{
	Idle:            "idle",
	PlanRequested:   "plan_requested",
	PlanReady:       "plan_ready",
	PlanFailed:      "plan_failed",
	RenderRequested: "render_requested",
	RenderComplete:  "render_complete",
	RenderFailed:    "render_failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
