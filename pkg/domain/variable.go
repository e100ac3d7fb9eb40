package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Variable type tags understood by the bundled renderers.
// The engine stores the tag verbatim and never interprets it.
const (
	TypeString   = "string"
	TypeBool     = "bool"
	TypeInt      = "int"
	TypeDate     = "date"
	TypeDateList = "dateList"
)

// Variable is an answer slot declared by a step.
type Variable struct {
	ID           int64  `json:"id"`
	StepID       int64  `json:"step_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	DefaultValue string `json:"default_value,omitempty"`

	// Options is an engine-opaque JSON object consumed by renderers,
	// e.g. {"minuteInterval":15,"minCount":1,"maxCount":6}.
	Options json.RawMessage `json:"options,omitempty"`
}

// VariableOptions are the renderer options used by the bundled date and time pickers.
type VariableOptions struct {
	MinuteInterval int `mapstructure:"minuteInterval" json:"minuteInterval,omitempty"`
	RoundTo        int `mapstructure:"roundTo" json:"roundTo,omitempty"`
	MinCount       int `mapstructure:"minCount" json:"minCount,omitempty"`
	MaxCount       int `mapstructure:"maxCount" json:"maxCount,omitempty"`
}

// DecodeOptions decodes the options payload into target.
// Numbers written as strings are accepted ("15" decodes into an int field).
// A variable without options leaves target untouched.
func (v Variable) DecodeOptions(target any) error {
	if len(v.Options) == 0 {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(v.Options, &raw); err != nil {
		return fmt.Errorf("variable %q: options are not a JSON object: %w", v.Name, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("variable %q: %w", v.Name, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("variable %q: decode options: %w", v.Name, err)
	}
	return nil
}

// TypedOptions decodes the options payload into VariableOptions.
func (v Variable) TypedOptions() (VariableOptions, error) {
	var opts VariableOptions
	err := v.DecodeOptions(&opts)
	return opts, err
}
