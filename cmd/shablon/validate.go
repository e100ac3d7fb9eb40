package main

import (
	"fmt"

	"github.com/aretw0/shablon/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <template-id>",
	Short: "Check a template for consistency",
	Long: `Crawls the graph from the start step and reports unreachable steps, dead ends,
steps without a fallback and condition fragments that were ignored.
Exits with status 1 when a dead end or a missing start step is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		app, _, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.Engine.Template(cmd.Context(), id); err != nil {
			return err
		}
		issues, err := validator.ValidateGraph(cmd.Context(), app.Engine.Store(), id)
		for _, i := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), i)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Graph is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
