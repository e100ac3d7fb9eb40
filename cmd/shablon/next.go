package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/spf13/cobra"
)

type nextOutput struct {
	Finished bool         `json:"finished"`
	Step     *domain.Step `json:"step,omitempty"`
	Summary  string       `json:"summary,omitempty"`
}

var nextCmd = &cobra.Command{
	Use:   "next <step-id>",
	Short: "Resolve the step that follows a step under the given answers",
	Long: `Prints the next step as JSON, or {"finished":true} when the step is terminal
and nothing leaves it. Exits with status 1 when no transition applies.`,
	Example: `  shablon next 12 --answers '{"timeOfDay":"evening","waiting":false}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		snapshot := state.New()
		if raw, _ := cmd.Flags().GetString("answers"); raw != "" {
			if err := json.Unmarshal([]byte(raw), snapshot); err != nil {
				return fmt.Errorf("--answers: %w", err)
			}
		}

		app, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		current, err := app.Engine.StepByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		next, err := app.Engine.NextStep(cmd.Context(), current, snapshot)
		if err != nil {
			return err
		}

		out := nextOutput{Finished: next == nil, Step: next}
		if next != nil && next.Kind == domain.KindSummary {
			if out.Summary, err = app.Engine.Summary(*next, snapshot); err != nil {
				return err
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	nextCmd.Flags().String("answers", "", "JSON object of the answers collected so far")
	rootCmd.AddCommand(nextCmd)
}
