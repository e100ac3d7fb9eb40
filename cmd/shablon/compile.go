package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/shablon/pkg/draft"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <draft.yaml|->",
	Short: "Compile a YAML draft into a new template",
	Long: `Reads a draft written with session-local step ids and commits it as one
template. Variables and transitions that reference unknown steps are dropped and
listed; everything else is written in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		app, cfg, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		d, err := draft.LoadYAML(in, cfg.OwnerID)
		if err != nil {
			return err
		}
		rep, err := app.Engine.CompileGraph(cmd.Context(), d)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		fmt.Fprintf(out, "compiled template %d: %d steps, %d variables, %d transitions\n",
			rep.TemplateID, len(rep.StepIDs), rep.Variables, rep.Transitions)
		for _, drop := range rep.Dropped {
			fmt.Fprintf(out, "dropped %s\n", drop)
		}
		for _, id := range rep.ClearedStart {
			fmt.Fprintf(out, "cleared start flag of step %d\n", id)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().Bool("json", false, "Print the compile report as JSON")
	rootCmd.AddCommand(compileCmd)
}
