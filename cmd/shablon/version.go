package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/shablon"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shablon version %s\n", strings.TrimSpace(shablon.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
