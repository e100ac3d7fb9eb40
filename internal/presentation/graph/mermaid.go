// Package graph renders persisted scenario graphs as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
)

// Overlay contains run data to visualize on the graph.
type Overlay struct {
	Visited []int64
	Current int64
}

// GenerateMermaid produces a Mermaid flowchart from the steps of a template and
// its transitions. Steps are emitted in the given order, each followed by its
// outgoing transitions in storage order.
//
// Shapes:
//   - Start: ((Circle))
//   - Terminal: ([Stadium])
//   - Question/Branch/Choice: {Rhombus}
//   - Form: [/Parallelogram/]
//   - Default: [Rectangle]
//
// Conditional edges are labeled with their expression; unparsable conditions
// are drawn dotted.
func GenerateMermaid(steps []domain.Step, transitions []domain.Transition, overlay *Overlay) string {
	outgoing := make(map[int64][]domain.Transition)
	for _, t := range transitions {
		outgoing[t.FromStepID] = append(outgoing[t.FromStepID], t)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range steps {
		opener, closer := "[", "]"
		switch {
		case step.IsStart:
			opener, closer = "((", "))"
		case step.IsTerminal:
			opener, closer = "([", "])"
		case step.Kind == domain.KindQuestion || step.Kind == domain.KindBranch || step.Kind == domain.KindChoice:
			opener, closer = "{", "}"
		case step.Kind == domain.KindForm:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(step.ID), opener, escape(step.Title), closer)

		for _, t := range outgoing[step.ID] {
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(t.FromStepID), arrow(t), nodeID(t.ToStepID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int64]bool)
		for _, id := range overlay.Visited {
			if !seen[id] && id != overlay.Current {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(id))
			}
		}
		if overlay.Current != 0 {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func arrow(t domain.Transition) string {
	expr := condition.ParsePayload(t.Condition)

	var label string
	switch {
	case !expr.Unconditional():
		label = expr.Source
		if t.Label != "" {
			label = t.Label + ": " + label
		}
	case t.Label != "":
		label = t.Label
	}

	if expr.HasIgnored() && expr.Unconditional() {
		if label == "" {
			return "-.->"
		}
		return fmt.Sprintf("-. \"%s\" .->", escape(label))
	}
	if label == "" {
		return "-->"
	}
	return fmt.Sprintf("-- \"%s\" -->", escape(label))
}

func nodeID(id int64) string {
	return fmt.Sprintf("s%d", id)
}

// escape replaces characters that would close a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
