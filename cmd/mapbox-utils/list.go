package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ListCmd prints the account's recent upload jobs.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent upload jobs for the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, token, err := account()
			if err != nil {
				return err
			}

			client := newClient(newLogger())
			jobs, err := client.ListUploads(cmd.Context(), username, token)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTILESET\tPROGRESS\tSTATE")
			for _, job := range jobs {
				state := "processing"
				switch {
				case job.Failed():
					state = "error: " + job.Error
				case job.Done():
					state = "complete"
				}
				fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n", job.ID, job.Tileset, job.Progress*100, state)
			}
			return w.Flush()
		},
	}
}
