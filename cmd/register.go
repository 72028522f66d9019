package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/logging"
	"github.com/kozaktomas/face-sentry/internal/report"
	"github.com/kozaktomas/face-sentry/internal/session"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register an identity from a single-face photo",
	Long: `Register an identity from a photo containing exactly one face.
The photo is stored as the identity's reference image and its feature
vector is extracted through the detection sidecar.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("file", "", "Path to the photo (required)")
	registerCmd.MarkFlagRequired("file")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New()
	ctx := context.Background()

	name := args[0]
	file := mustGetString(cmd, "file")

	frame, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	detector := detect.NewClient(cfg.Detector.URL)
	g, err := loadGallery(ctx, cfg, detector, nil, log)
	if err != nil {
		return fmt.Errorf("loading identity gallery: %w", err)
	}

	sink := report.NewFileSink(cfg.Data.Path, log)
	engine := session.NewEngine(cfg, g, detector, emotion.NewRandom(), sink, log)

	if err := engine.Register(ctx, name, frame); err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}

	fmt.Printf("Registered %s (%d identities total)\n", name, g.Len())
	return nil
}
