package condition

import (
	"bytes"
	"encoding/json"
	"strings"
)

// payload is the persisted wire format of a transition condition.
type payload struct {
	If string `json:"if"`
}

// ParsePayload parses a persisted condition payload {"if": "<expr>"}.
// An empty payload, JSON null or an object without "if" is unconditional.
// A payload that is not valid JSON (or whose "if" is not a string) is unconditional
// too, and is reported whole in Ignored.
func ParsePayload(raw string) Expression {
	if strings.TrimSpace(raw) == "" {
		return Expression{}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Expression{Source: raw, Ignored: []string{raw}}
	}
	ifRaw, ok := fields["if"]
	if !ok {
		return Expression{Source: raw}
	}

	var expr string
	if err := json.Unmarshal(ifRaw, &expr); err != nil {
		return Expression{Source: raw, Ignored: []string{raw}}
	}
	return Parse(expr)
}

// EncodePayload wraps expression text into the persisted payload.
// Blank expressions encode to the empty string (no condition).
func EncodePayload(expr string) string {
	if strings.TrimSpace(expr) == "" {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload{If: expr}); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
