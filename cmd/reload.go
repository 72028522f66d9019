package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/logging"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-extract feature vectors for all stored identities",
	Long: `Re-run feature extraction over every stored reference image and
report identities whose extraction fails. Useful after switching the
detection sidecar or its model.`,
	RunE: runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New()
	ctx := context.Background()

	detector := detect.NewClient(cfg.Detector.URL)
	g, err := loadGallery(ctx, cfg, detector, nil, log)
	if err != nil {
		return fmt.Errorf("reloading identity gallery: %w", err)
	}

	fmt.Printf("Reloaded %d identities\n", g.Len())
	return nil
}
