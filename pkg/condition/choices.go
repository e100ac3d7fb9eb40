package condition

import (
	"encoding/json"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/state"
)

// Choice is an answer a renderer can offer for a step: writing Value under Key
// makes the resolver take the transition it was derived from.
type Choice struct {
	TransitionID int64       `json:"transition_id"`
	ToStepID     int64       `json:"to_step_id"`
	Key          string      `json:"key"`
	Value        state.Value `json:"-"`
	Label        string      `json:"label"`
}

// Choices derives the offerable answers of a step from its outgoing transitions.
// Every OR-group made of exactly one "==" clause yields a choice; "true"/"false"
// literals are offered as booleans. Other transitions yield nothing.
func Choices(transitions []domain.Transition) []Choice {
	var out []Choice
	for _, t := range transitions {
		expr := ParsePayload(t.Condition)
		for _, g := range expr.Groups {
			if len(g) != 1 || g[0].Op != OpEqual {
				continue
			}
			value := g[0].Expected
			if b, ok := boolLiteral(value); ok {
				value = state.Bool(b)
			}
			label := t.Label
			if label == "" || len(expr.Groups) > 1 {
				label = state.Format(value)
			}
			out = append(out, Choice{
				TransitionID: t.ID,
				ToStepID:     t.ToStepID,
				Key:          g[0].Key,
				Value:        value,
				Label:        label,
			})
		}
	}
	return out
}

// MarshalJSON writes Value in its plain JSON form.
func (c Choice) MarshalJSON() ([]byte, error) {
	type alias Choice
	return json.Marshal(struct {
		alias
		Value any `json:"value"`
	}{alias: alias(c), Value: state.Native(c.Value)})
}
