package domain

import "time"

// Template is a named scenario. Names are unique per owner.
type Template struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateSummary is a listing row: the template plus the number of steps it owns.
type TemplateSummary struct {
	Template
	StepCount int `json:"step_count"`
}
