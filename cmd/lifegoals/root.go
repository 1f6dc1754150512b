package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"life-goals/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "lifegoals",
	Short: "Goals, tasks and habits in Telegram",
	Long: `lifegoals tracks life goals, their tasks and daily habits stored in a
goal-tracking backend. "serve" runs the Telegram bot; the other commands
print one-shot text reports for a single backend account.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			os.Setenv(config.FileEnv, path)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides "+config.FileEnv+")")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
