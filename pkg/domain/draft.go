package domain

import "encoding/json"

// LocalID identifies a draft step within one authoring session.
// It is meaningful only until the draft is compiled.
type LocalID int64

// Draft is an author-time graph keyed by local identifiers.
type Draft struct {
	Template    DraftTemplate     `json:"template"`
	Steps       []DraftStep       `json:"steps"`
	Variables   []DraftVariable   `json:"variables"`
	Transitions []DraftTransition `json:"transitions"`
}

// DraftTemplate carries the template row of a draft.
type DraftTemplate struct {
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DraftStep is a step keyed by its local id.
type DraftStep struct {
	LocalID    LocalID  `json:"local_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content,omitempty"`
	Message    string   `json:"message,omitempty"`
	Kind       StepKind `json:"kind,omitempty"`
	IsStart    bool     `json:"is_start"`
	IsTerminal bool     `json:"is_terminal"`
	SortHint   int      `json:"sort_hint"`
}

// DraftVariable references its step through a local id.
type DraftVariable struct {
	StepLocalID  LocalID         `json:"step_local_id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	DefaultValue string          `json:"default_value,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
}

// DraftTransition references both endpoints through local ids.
type DraftTransition struct {
	FromLocalID LocalID `json:"from_local_id"`
	ToLocalID   LocalID `json:"to_local_id"`
	Label       string  `json:"label,omitempty"`
	Condition   string  `json:"condition,omitempty"`
}
