package condition

import (
	"strings"

	"github.com/aretw0/shablon/pkg/state"
	"golang.org/x/text/cases"
)

// Matches reports whether the clause holds against the snapshot.
// A key absent from the snapshot never matches, whatever the operator.
func (c Clause) Matches(s *state.Snapshot) bool {
	actual, ok := s.Get(c.Key)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEqual:
		if want, isLiteral := boolLiteral(c.Expected); isLiteral {
			if got, isBool := actual.(state.Bool); isBool {
				return bool(got) == want
			}
		}
		return equal(actual, c.Expected)
	case OpNotEqual:
		return !equal(actual, c.Expected)
	case OpContains:
		got, ok1 := actual.(state.String)
		want, ok2 := c.Expected.(state.String)
		if !ok1 || !ok2 {
			return false
		}
		fold := cases.Fold()
		return strings.Contains(fold.String(string(got)), fold.String(string(want)))
	default:
		return false
	}
}

// Matches reports whether every clause of the group holds.
func (g Group) Matches(s *state.Snapshot) bool {
	for _, c := range g {
		if !c.Matches(s) {
			return false
		}
	}
	return true
}

// Matches reports whether at least one group holds.
// An unconditional expression always matches.
func (e Expression) Matches(s *state.Snapshot) bool {
	if e.Unconditional() {
		return true
	}
	for _, g := range e.Groups {
		if g.Matches(s) {
			return true
		}
	}
	return false
}

// boolLiteral reports whether v is the string "true" or "false" (any case).
func boolLiteral(v state.Value) (bool, bool) {
	str, ok := v.(state.String)
	if !ok {
		return false, false
	}
	switch strings.ToLower(string(str)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// equal compares same-typed values. Mismatched types never match.
func equal(a, b state.Value) bool {
	switch x := a.(type) {
	case state.String:
		y, ok := b.(state.String)
		return ok && x == y
	case state.Int:
		y, ok := b.(state.Int)
		return ok && x == y
	case state.Bool:
		y, ok := b.(state.Bool)
		return ok && x == y
	default:
		return false
	}
}
