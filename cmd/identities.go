package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/gallery"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List identities stored in the data directory",
	RunE:  runIdentities,
}

var identitiesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a stored identity and its reference image",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesRemove,
}

func init() {
	identitiesCmd.AddCommand(identitiesRemoveCmd)
	rootCmd.AddCommand(identitiesCmd)
}

func runIdentities(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	stored, err := gallery.ListStored(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("scanning data directory: %w", err)
	}
	if len(stored) == 0 {
		fmt.Println("No identities registered")
		return nil
	}

	for _, s := range stored {
		fmt.Printf("%-30s %s\n", s.Name, s.ImagePath)
	}
	fmt.Printf("\n%d identities\n", len(stored))
	return nil
}

func runIdentitiesRemove(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	name := gallery.Key(args[0])

	if _, err := os.Stat(gallery.IdentityPath(cfg.Data.Path, name)); err != nil {
		return fmt.Errorf("identity %q not found", name)
	}
	if err := gallery.RemoveStorage(cfg.Data.Path, name); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", name)
	return nil
}
