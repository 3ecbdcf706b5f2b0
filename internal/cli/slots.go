package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"slotbook/internal/slots"
)

func newSlotsCmd() *cobra.Command {
	var (
		file      string
		available bool
		windows   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the slot grid for a day file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadDayFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := slots.Compute(req)
			if err != nil {
				return err
			}
			printSkipped(cmd.ErrOrStderr(), res.Skipped)

			out := res.Slots
			if available {
				out = slots.AvailableOnly(out)
			}

			if windows {
				return printWindows(cmd, slots.FreeWindows(res.Slots), asJSON)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tSTATUS")
			for _, s := range out {
				status := "available"
				if !s.Available {
					status = string(s.Reason)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.DisplayStart, s.DisplayEnd, status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			free := len(slots.AvailableOnly(res.Slots))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d slots free for %s (%s)\n",
				free, len(res.Slots), slots.FormatDuration(req.Duration), timezoneOf(req))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "day file (YAML), - for stdin")
	cmd.Flags().BoolVar(&available, "available", false, "only print available slots")
	cmd.Flags().BoolVar(&windows, "windows", false, "print contiguous free windows instead of slots")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printWindows(cmd *cobra.Command, windows []slots.Window, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(windows)
	}
	for _, w := range windows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s - %s (%d slots)\n", w.Start, w.End, w.Slots)
	}
	return nil
}

func timezoneOf(req slots.Request) string {
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		return tz
	}
	return "UTC"
}
