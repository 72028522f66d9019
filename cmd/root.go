// Package cmd implements the face-sentry command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-sentry",
	Short: "A presence engine that turns camera frames into visit sessions",
	Long: `Face Sentry ingests camera frames, matches detected faces against
registered identities and maintains per-identity presence sessions:
tentative sightings become confirmed visits after a continuous
activation window, with motion and emotion evidence accumulated along
the way. Detection events end up in a bounded queryable history and in
append-only report files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
