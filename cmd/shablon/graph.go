package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <template-id>",
	Short: "Export a template as a Mermaid flowchart or JSON",
	Args:  cobra.ExactArgs(1),
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

		switch format, _ := cmd.Flags().GetString("format"); format {
		case "mermaid":
			chart, err := app.Engine.Mermaid(cmd.Context(), id, nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), chart)
			return nil
		case "json":
			g, err := app.Engine.Graph(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		default:
			return fmt.Errorf("unknown format %q (want mermaid or json)", format)
		}
	},
}

func init() {
	graphCmd.Flags().StringP("format", "f", "mermaid", "mermaid or json")
	rootCmd.AddCommand(graphCmd)
}
