package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slotbook/internal/clock"
	"slotbook/internal/slots"
)

func newCheckCmd() *cobra.Command {
	var (
		file string
		at   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether one start time can be booked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadDayFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			reason, err := slots.Explain(req, at)
			if err != nil {
				return err
			}

			display, err := clock.To12Hour(at)
			if err != nil {
				return err
			}
			if reason == slots.ReasonNone {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", display)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: unavailable (%s)\n", display, reason)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "day file (YAML), - for stdin")
	cmd.Flags().StringVar(&at, "at", "", "candidate start, HH:MM")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
