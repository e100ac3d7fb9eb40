package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/shablon/internal/cli"
	"github.com/aretw0/shablon/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shablon",
	Short: "Shablon walks questionnaire scenarios stored as step graphs",
	Long: `Shablon stores scenarios as graphs of steps joined by conditional transitions,
compiles authored drafts into a SQLite database and walks them one answer at a time.

Configuration comes from SHABLON_* environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code:
// 0 on success, 1 for a routing failure or an unfinished run, 2 for any other error.
func Execute() int {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "SQLite database path (env SHABLON_DB)")
	pf.String("log-level", "", "debug, info, warn or error (env SHABLON_LOG_LEVEL)")
	pf.String("log-format", "", "text or json (env SHABLON_LOG_FORMAT)")
	pf.String("redis", "", "Redis address for the compile lock (env SHABLON_REDIS_ADDR)")
	pf.Int64("owner", 0, "Owner id (env SHABLON_OWNER_ID)")
}

// loadConfig reads the environment and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("redis") {
		cfg.RedisAddr, _ = flags.GetString("redis")
	}
	if flags.Changed("owner") {
		cfg.OwnerID, _ = flags.GetInt64("owner")
	}
	return cfg, nil
}

// openApp loads the configuration and opens the engine it describes.
func openApp(cmd *cobra.Command) (*cli.App, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, cfg, err
	}
	app, err := cli.OpenApp(cmd.Context(), cfg, logger)
	return app, cfg, err
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
