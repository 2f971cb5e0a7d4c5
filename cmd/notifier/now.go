package main

import (
	"fmt"
	"time"

	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/config"

	"github.com/spf13/cobra"
)

func nowCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Print the planetary hour for the current time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			clock, err := planetary.NewHourClock(cfg.HourPolicy, cfg.HourPeriod, loc)
			if err != nil {
				return err
			}

			t := time.Now()
			if at != "" {
				if t, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}
			reading, err := clock.LabelFor(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tstarted %s\n", reading.Label, reading.Slot, reading.Start.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "resolve the hour at this RFC3339 time instead of now")
	return cmd
}
