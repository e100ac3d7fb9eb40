package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", cfg.DBPath)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the example consultation scenario",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		id, created, err := app.Engine.Seed(cmd.Context(), cfg.OwnerID)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "seeded template %d\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "template %d already present\n", id)
		}
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the templates of the owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		list, err := app.Engine.Templates(cmd.Context(), cfg.OwnerID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTEPS\tUPDATED")
		for _, t := range list {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", t.ID, t.Name, t.StepCount, t.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a template with all its steps and transitions",
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

		if err := app.Engine.DeleteTemplate(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted template %d\n", id)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <template-id> <name>",
	Short: "Rename a template",
	Args:  cobra.ExactArgs(2),
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

		tpl, err := app.Engine.Template(cmd.Context(), id)
		if err != nil {
			return err
		}
		description := tpl.Description
		if cmd.Flags().Changed("description") {
			description, _ = cmd.Flags().GetString("description")
		}
		return app.Engine.UpdateTemplate(cmd.Context(), id, args[1], description)
	},
}

func init() {
	renameCmd.Flags().String("description", "", "New description")
	rootCmd.AddCommand(migrateCmd, seedCmd, templatesCmd, deleteCmd, renameCmd)
}
