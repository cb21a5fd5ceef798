package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var navDays int

func init() {
	rootCmd.AddCommand(navCmd)

	navCmd.Flags().IntVar(&navDays, "days", 30, "Calendar days of history before the latest NAV")
}

var navCmd = &cobra.Command{
	Use:   "nav <scheme-code>",
	Short: "Print the NAV history of a scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if navDays <= 0 {
			return fmt.Errorf("--days must be positive, got %d", navDays)
		}

		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.Close()

		points, err := a.NavClient.GetHistoricalNav(cmd.Context(), args[0], navDays)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tNAV")
		for _, p := range points {
			fmt.Fprintf(tw, "%s\t%.4f\n", p.Date.Format("2006-01-02"), p.NAV)
		}
		return tw.Flush()
	},
}
