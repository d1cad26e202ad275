package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd removes a finished or errored upload job from the account listing.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete UPLOAD_ID",
		Short: "Remove an upload job from the account listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, token, err := account()
			if err != nil {
				return err
			}

			client := newClient(newLogger())
			if err := client.DeleteUpload(cmd.Context(), username, token, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted upload %s\n", args[0])
			return nil
		},
	}
}
