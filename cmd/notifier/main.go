package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notifier",
		Short: "Planetary hour notifier",
		Long: `Announces each planetary hour with an alert and an audio cue.
The background worker wakes up periodically, resolves the current hour and
delivers once per hour slot.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(nowCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
