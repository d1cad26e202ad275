package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yurivangeffen/mapbox-utils/api"
)

const (
	FlagToken    = "token"
	FlagUsername = "username"
	FlagBaseURL  = "base-url"
	FlagVerbose  = "verbose"

	EnvToken    = "MAPBOX_ACCESS_TOKEN"
	EnvUsername = "MAPBOX_USERNAME"
)

// RootCmd builds the root command with the global account flags and all
// subcommands attached.
func RootCmd() *cobra.Command {
	r := &cobra.Command{
		Use:          "mapbox-utils",
		Short:        "mapbox-utils publishes local files as hosted tilesets",
		SilenceUsage: true,
	}

	r.PersistentFlags().String(FlagToken, "", "access token (or set "+EnvToken+")")
	r.PersistentFlags().String(FlagUsername, "", "account username (or set "+EnvUsername+")")
	r.PersistentFlags().String(FlagBaseURL, api.DefaultBaseURL, "tileset service base URL")
	r.PersistentFlags().Bool(FlagVerbose, false, "enable debug logging")

	if err := viper.BindPFlags(r.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.MustBindEnv(FlagToken, EnvToken)
	viper.MustBindEnv(FlagUsername, EnvUsername)

	r.AddCommand(UploadCmd(), ListCmd(), DeleteCmd())

	return r
}

// account resolves the username and token from flags, falling back to the
// environment via viper.
func account() (username, token string, err error) {
	username = viper.GetString(FlagUsername)
	token = viper.GetString(FlagToken)
	if username == "" {
		return "", "", fmt.Errorf("no username given: set --%s or %s", FlagUsername, EnvUsername)
	}
	if token == "" {
		return "", "", fmt.Errorf("no access token given: set --%s or %s", FlagToken, EnvToken)
	}
	return username, token, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool(FlagVerbose) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newClient(logger *slog.Logger) *api.Client {
	return api.New(
		api.WithBaseURL(viper.GetString(FlagBaseURL)),
		api.WithLogger(logger),
	)
}
