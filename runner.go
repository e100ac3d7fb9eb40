package shablon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/shablon/internal/presentation/tui"
	"github.com/aretw0/shablon/internal/runtime"
	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/state"
)

// errStop ends the loop when the user types exit or the input closes.
var errStop = errors.New("stop")

// Runner plays a template line by line on a reader/writer pair.
// This allows for easy testing and integration with different frontends.
type Runner struct {
	Input  io.Reader
	Output io.Writer
	// Headless suppresses the banner line and prompts (piped input).
	Headless bool
	Renderer ContentRenderer
	// Prompt decorates prompts, e.g. with terminal colors.
	Prompt func(string) string
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Run walks templateID from its start step until a terminal step finishes the run,
// the input closes or the user types exit. It returns the run so the caller can
// inspect Finished, History and Snapshot. A routing failure is reported and the
// step asked again.
func (r *Runner) Run(ctx context.Context, engine *Engine, templateID int64) (*runtime.Run, error) {
	if r.Input == nil {
		return nil, errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return nil, errors.New("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	run, err := engine.NewRun(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !r.Headless {
		fmt.Fprintln(r.Output, "--- shablon (type exit to quit) ---")
	}

	for {
		view, err := engine.View(ctx, run.Current().ID)
		if err != nil {
			return run, err
		}
		r.show(tui.StepMarkdown(view.Step, view.Variables, view.Choices))

		if view.Step.Kind == domain.KindSummary {
			text, err := engine.Summary(view.Step, run.Snapshot())
			if err != nil {
				return run, err
			}
			fmt.Fprintln(r.Output, strings.TrimSpace(text))
		}

		if err := r.collect(lines, run, view); err != nil {
			if errors.Is(err, errStop) {
				return run, nil
			}
			return run, err
		}

		next, err := run.Advance(ctx)
		if err != nil {
			if domain.IsRoutingFailure(err) {
				fmt.Fprintln(r.Output, "No path leads on from here with these answers, try again.")
				continue
			}
			return run, err
		}
		if next == nil {
			return run, nil
		}
	}
}

func (r *Runner) show(markdown string) {
	out := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(out))
}

// collect asks every variable of the step, then one of the remaining choices.
// Answers go through the variable's picker options and are asked again when
// they break them.
func (r *Runner) collect(lines *bufio.Reader, run *runtime.Run, view StepView) error {
	asked := make(map[string]bool, len(view.Variables))
	for _, v := range view.Variables {
		asked[v.Name] = true
		// Options that do not decode impose nothing, like unknown keys.
		opts, _ := v.TypedOptions()
		for {
			text, err := r.ask(lines, v.Name)
			if err != nil {
				return err
			}
			if text == "" {
				text = v.DefaultValue
			}
			if text == "" {
				if err := state.CheckCount(0, opts); err != nil && v.Type == domain.TypeDateList {
					fmt.Fprintln(r.Output, err)
					continue
				}
				break
			}
			val, err := state.ParseText(v.Type, text)
			if err == nil {
				val, err = state.Constrain(val, opts)
			}
			if err != nil {
				fmt.Fprintln(r.Output, err)
				continue
			}
			run.Answer(v.Name, val)
			break
		}
	}

	var choices []condition.Choice
	for _, c := range view.Choices {
		if !asked[c.Key] {
			choices = append(choices, c)
		}
	}
	if len(choices) == 0 {
		if len(view.Variables) == 0 && !view.Step.IsTerminal {
			_, err := r.ask(lines, "enter to continue")
			return err
		}
		return nil
	}

	for {
		text, err := r.ask(lines, fmt.Sprintf("answer 1-%d", len(choices)))
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(choices) {
			fmt.Fprintf(r.Output, "pick a number between 1 and %d\n", len(choices))
			continue
		}
		picked := choices[n-1]
		run.Answer(picked.Key, picked.Value)
		return nil
	}
}

func (r *Runner) ask(lines *bufio.Reader, label string) (string, error) {
	if !r.Headless {
		prompt := label + "> "
		if r.Prompt != nil {
			prompt = r.Prompt(prompt)
		}
		fmt.Fprint(r.Output, prompt)
	}
	text, err := lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		if errors.Is(err, io.EOF) {
			return "", errStop
		}
		return "", fmt.Errorf("input error: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "exit" || text == "quit" {
		fmt.Fprintln(r.Output, "Bye!")
		return "", errStop
	}
	return text, nil
}
