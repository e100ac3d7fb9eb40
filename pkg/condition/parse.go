package condition

import (
	"strings"

	"github.com/aretw0/shablon/pkg/state"
)

// Operator is a clause comparison.
type Operator string

const (
	// OpEqual compares a stored string with the literal; "true"/"false" literals
	// also match stored booleans.
	OpEqual Operator = "=="
	// OpNotEqual negates OpEqual without the boolean rule.
	OpNotEqual Operator = "!="
	// OpContains is case-insensitive substring containment between strings.
	OpContains Operator = "contains"
)

const (
	orToken       = "||"
	andToken      = "&&"
	containsToken = " contains "
)

// Clause is a single comparison against the snapshot.
// Expected is always a state.String: literals are text, quoted or not.
type Clause struct {
	Key      string
	Op       Operator
	Expected state.Value
}

// Group is a conjunction of clauses. Clause order is irrelevant.
type Group []Clause

// Expression is the parsed form of a condition.
type Expression struct {
	// Source is the text that was parsed.
	Source string
	// Groups are ORed together. Empty means "no condition".
	Groups []Group
	// Ignored lists the OR-fragments that were dropped because they did not parse.
	Ignored []string
}

// Unconditional reports whether the expression carries no usable clause.
func (e Expression) Unconditional() bool {
	return len(e.Groups) == 0
}

// HasIgnored reports whether some fragment of the source was dropped.
func (e Expression) HasIgnored() bool {
	return len(e.Ignored) > 0
}

// Parse turns expression text into OR-groups of clauses. It never fails.
func Parse(expr string) Expression {
	out := Expression{Source: expr}
	if strings.TrimSpace(expr) == "" {
		return out
	}

	for _, fragment := range strings.Split(expr, orToken) {
		fragment = strings.TrimSpace(fragment)
		group, ok := parseGroup(fragment)
		if !ok {
			out.Ignored = append(out.Ignored, fragment)
			continue
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}

// parseGroup parses an AND-joined fragment. One bad clause drops the whole group,
// otherwise the group would silently become more permissive than written.
func parseGroup(fragment string) (Group, bool) {
	if fragment == "" {
		return nil, false
	}
	parts := strings.Split(fragment, andToken)
	group := make(Group, 0, len(parts))
	for _, part := range parts {
		clause, ok := parseClause(part)
		if !ok {
			return nil, false
		}
		group = append(group, clause)
	}
	return group, true
}

func parseClause(text string) (Clause, bool) {
	text = strings.TrimSpace(text)
	idx, op, width := findOperator(text)
	if idx < 0 {
		return Clause{}, false
	}

	key := strings.TrimSpace(text[:idx])
	if key == "" {
		return Clause{}, false
	}
	raw := strings.TrimSpace(text[idx+width:])

	return Clause{Key: key, Op: op, Expected: parseLiteral(raw)}, true
}

// findOperator returns the comparison token that starts earliest in text.
func findOperator(text string) (int, Operator, int) {
	best, op, width := -1, Operator(""), 0
	for _, cand := range []struct {
		token string
		op    Operator
	}{
		{string(OpEqual), OpEqual},
		{string(OpNotEqual), OpNotEqual},
		{containsToken, OpContains},
	} {
		if i := strings.Index(text, cand.token); i >= 0 && (best < 0 || i < best) {
			best, op, width = i, cand.op, len(cand.token)
		}
	}
	return best, op, width
}

// parseLiteral strips one layer of surrounding quotes.
func parseLiteral(raw string) state.Value {
	return state.String(strings.Trim(raw, `"'`))
}
