package main

import (
	"fmt"

	"github.com/spf13/cobra"

	upload "github.com/yurivangeffen/mapbox-utils"
)

const (
	FlagName         = "name"
	FlagWait         = "wait"
	FlagPollInterval = "poll-interval"
	FlagMaxPolls     = "max-polls"
)

// UploadCmd publishes a local file as a tileset.
func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE SLUG",
		Short: "Publish a local file as a tileset",
		Long: `Upload stages FILE with service-issued temporary credentials and
registers it for processing as the tileset {username}.SLUG. Reusing a
slug replaces the existing tileset.`,
		Example: `  mapbox-utils upload streets.mbtiles streets --name "Street data"
  mapbox-utils upload parks.geojson parks --wait`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, token, err := account()
			if err != nil {
				return err
			}

			name, err := cmd.Flags().GetString(FlagName)
			if err != nil {
				return err
			}
			if name == "" {
				name = args[1]
			}
			wait, err := cmd.Flags().GetBool(FlagWait)
			if err != nil {
				return err
			}
			interval, err := cmd.Flags().GetDuration(FlagPollInterval)
			if err != nil {
				return err
			}
			maxPolls, err := cmd.Flags().GetInt(FlagMaxPolls)
			if err != nil {
				return err
			}

			logger := newLogger()
			wf := upload.New(newClient(logger),
				upload.WithWait(wait),
				upload.WithPollInterval(interval),
				upload.WithMaxPolls(maxPolls),
				upload.WithLogger(logger),
				upload.WithReporter(&upload.WriterReporter{W: cmd.OutOrStdout()}),
			)

			job, err := wf.Run(cmd.Context(), upload.Request{
				Path:     args[0],
				Name:     name,
				Slug:     args[1],
				Username: username,
				Token:    token,
			})
			if err != nil {
				return err
			}

			if wait {
				fmt.Fprintf(cmd.OutOrStdout(), "tileset %s is ready\n", job.Tileset)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "processing started: upload %s for tileset %s\n", job.ID, job.Tileset)
			}
			return nil
		},
	}

	cmd.Flags().String(FlagName, "", "display name for the tileset (defaults to the slug)")
	cmd.Flags().Bool(FlagWait, false, "wait for processing to finish")
	cmd.Flags().Duration(FlagPollInterval, upload.DefaultPollInterval, "delay between status queries when waiting")
	cmd.Flags().Int(FlagMaxPolls, 0, "maximum status queries when waiting, 0 for no limit")

	return cmd
}
