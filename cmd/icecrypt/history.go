package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dcrodman/icecrypt/internal/data"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Shows the most recently processed files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			defer data.Close(db)

			jobs, err := data.RecentJobs(db, limit)
			if err != nil {
				return fmt.Errorf("error reading history: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tDIRECTION\tSTATUS\tBYTES\tSOURCE\tDESTINATION")
			for _, j := range jobs {
				status := j.Status
				if j.Error != "" {
					status += ": " + j.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					j.StartedAt.Format("2006-01-02 15:04:05"), j.Direction, status, j.Bytes, j.Source, j.Destination)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	return cmd
}
