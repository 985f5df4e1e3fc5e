package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	RunE:  runPlatforms,
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func runPlatforms(cmd *cobra.Command, _ []string) error {
	if adapterFactory == nil {
		return errors.New("adapter factory not configured")
	}

	registered := make(map[domain.Platform]bool)
	for _, p := range adapterFactory.SupportedPlatforms() {
		registered[p] = true
	}

	for _, info := range domain.SupportedPlatforms() {
		state := "available"
		if !registered[info.ID] {
			state = "unavailable"
		}
		cmd.Printf("%-10s  %-12s  pushes into a %s\n", info.ID, state, info.ContainerNoun)
	}
	return nil
}
