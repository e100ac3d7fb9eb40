package domain

// Transition is a directed edge between two steps of the same template.
type Transition struct {
	ID         int64  `json:"id"`
	FromStepID int64  `json:"from_step_id"`
	ToStepID   int64  `json:"to_step_id"`
	Label      string `json:"label,omitempty"`

	// Condition is the serialized payload {"if": "<expr>"}.
	// An empty or unparsable payload makes the transition an unconditional fallback.
	Condition string `json:"condition,omitempty"`
}
