// Package tui renders scenario steps for interactive terminals.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// With no options it detects a light or dark background.
func NewRenderer(opts ...glamour.TermRendererOption) (func(string) (string, error), error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// StepMarkdown describes a step as markdown: its title and content, the fields
// to fill in and the numbered answers the user can pick.
func StepMarkdown(step domain.Step, vars []domain.Variable, choices []condition.Choice) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", step.Title)
	if step.Content != "" {
		fmt.Fprintf(&sb, "\n%s\n", step.Content)
	}

	if len(vars) > 0 {
		sb.WriteString("\n**Fields**\n\n")
		for _, v := range vars {
			fmt.Fprintf(&sb, "- `%s` (%s", v.Name, v.Type)
			if v.DefaultValue != "" {
				fmt.Fprintf(&sb, ", default %s", v.DefaultValue)
			}
			sb.WriteString(")\n")
		}
	}

	if len(choices) > 0 {
		sb.WriteString("\n**Answers**\n\n")
		for i, c := range choices {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Label)
		}
	}
	return sb.String()
}

// Prompt styles an input prompt for the given color profile.
func Prompt(p termenv.Profile, text string) string {
	return p.String(text).Foreground(p.Color("#a78bfa")).Bold().String()
}
