package main

import (
	"fmt"
	"os"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/internal/cli"
	"github.com/aretw0/shablon/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <template-id>",
	Short: "Walk a template interactively",
	Long: `Shows every step, asks its fields and answers and moves on until a terminal
step is reached. Type exit to quit. With piped input no prompts are printed.`,
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

		out := cmd.OutOrStdout()
		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		headless, _ := cmd.Flags().GetBool("headless")
		headless = headless || !interactive

		runner := &shablon.Runner{
			Input:    cmd.InOrStdin(),
			Output:   out,
			Headless: headless,
		}
		if !headless {
			tui.PrintBanner(out)
			render, err := tui.NewRenderer()
			if err != nil {
				return err
			}
			runner.Renderer = render
			profile := termenv.ColorProfile()
			runner.Prompt = func(s string) string { return tui.Prompt(profile, s) }
		}

		run, err := runner.Run(cmd.Context(), app.Engine, id)
		if err != nil {
			return err
		}

		if showGraph, _ := cmd.Flags().GetBool("graph"); showGraph {
			chart, err := app.Engine.Mermaid(cmd.Context(), id, run)
			if err != nil {
				return err
			}
			fmt.Fprint(out, chart)
		}
		if !run.Finished() {
			return cli.ErrRunIncomplete
		}
		return nil
	},
}

func init() {
	playCmd.Flags().Bool("headless", false, "No banner, colors or prompts")
	playCmd.Flags().Bool("graph", false, "Print the Mermaid chart of the path taken at the end")
	rootCmd.AddCommand(playCmd)
}
