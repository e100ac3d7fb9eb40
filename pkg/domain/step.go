package domain

import "time"

// StepKind tags how a step is presented to the user.
// The engine never branches on it; traversal is driven by transitions only.
type StepKind string

const (
	// KindQuestion asks a closed question (yes/no style).
	KindQuestion StepKind = "question"
	// KindBranch lets the user pick one of the outgoing paths.
	KindBranch StepKind = "branch"
	// KindForm collects the values of the step's variables.
	KindForm StepKind = "form"
	// KindChoice picks a single value from a list.
	KindChoice StepKind = "choice"
	// KindInfo displays content and continues.
	KindInfo StepKind = "info"
	// KindSummary synthesizes the final message from the collected answers.
	KindSummary StepKind = "summary"
)

// Kinds lists every known step kind in authoring order.
var Kinds = []StepKind{KindQuestion, KindBranch, KindForm, KindChoice, KindInfo, KindSummary}

// Valid reports whether k is one of the known kinds.
// An empty kind is accepted by storage and rendered as info.
func (k StepKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Step is a node in the scenario graph.
type Step struct {
	ID         int64     `json:"id"`
	TemplateID int64     `json:"template_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	Message    string    `json:"message,omitempty"`
	Kind       StepKind  `json:"kind,omitempty"`
	IsStart    bool      `json:"is_start"`
	IsTerminal bool      `json:"is_terminal"`
	SortHint   int       `json:"sort_hint"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
