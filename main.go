package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dailystudybot",
		Short: "Daily vocabulary quiz and concept delivery over Telegram",
		// Running without a subcommand starts the bot, as deployments expect
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(contextOf(cmd))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml or $HOME/.config/dailystudybot/config.yaml)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newConceptCommand())
	rootCmd.AddCommand(newQuizCommand())

	return rootCmd
}
