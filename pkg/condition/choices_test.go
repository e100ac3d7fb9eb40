package condition_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoices(t *testing.T) {
	transitions := []domain.Transition{
		{ID: 1, ToStepID: 30, Label: "Day", Condition: `{"if":"timeOfDay==\"day\""}`},
		{ID: 2, ToStepID: 40, Label: "Evening", Condition: `{"if":"timeOfDay==\"evening\""}`},
		{ID: 3, ToStepID: 60, Label: "Next", Condition: `{"if":"waiting==true || waiting==false"}`},
		{ID: 4, ToStepID: 70, Label: "Fallback"},
		{ID: 5, ToStepID: 80, Condition: `{"if":"a==1 && b==2"}`},
		{ID: 6, ToStepID: 90, Condition: `{"if":"who!=\"self\""}`},
	}

	got := condition.Choices(transitions)
	require.Len(t, got, 4)

	assert.Equal(t, condition.Choice{TransitionID: 1, ToStepID: 30, Key: "timeOfDay", Value: state.String("day"), Label: "Day"}, got[0])
	assert.Equal(t, condition.Choice{TransitionID: 2, ToStepID: 40, Key: "timeOfDay", Value: state.String("evening"), Label: "Evening"}, got[1])
	assert.Equal(t, condition.Choice{TransitionID: 3, ToStepID: 60, Key: "waiting", Value: state.Bool(true), Label: "true"}, got[2])
	assert.Equal(t, condition.Choice{TransitionID: 3, ToStepID: 60, Key: "waiting", Value: state.Bool(false), Label: "false"}, got[3])
}

func TestChoice_MarshalJSON(t *testing.T) {
	c := condition.Choice{TransitionID: 3, ToStepID: 60, Key: "waiting", Value: state.Bool(true), Label: "Yes"}

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transition_id":3,"to_step_id":60,"key":"waiting","value":true,"label":"Yes"}`, string(out))
}
