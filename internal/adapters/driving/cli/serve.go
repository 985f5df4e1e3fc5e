package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront-labs/channelsync/internal/adapters/driven/config/file"
	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background sync scheduler",
	Long: `Runs scheduled catalog syncs until interrupted.

Tasks are created with 'channelsync schedule' and persist across
restarts. Configuration changes are picked up without a restart.`,
	RunE: runServe,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <merchant-id> <platform>",
	Short: "Create or update a recurring sync task",
	Long: `Registers a recurring catalog sync for a merchant and platform.

The task runs whenever 'channelsync serve' is active. Scheduling the
same pair again updates the interval.

Examples:
  channelsync schedule merchant-42 facebook
  channelsync schedule merchant-42 tiktok --interval 2h`,
	Args: cobra.ExactArgs(2),
	RunE: runSchedule,
}

var scheduleInterval time.Duration

func init() {
	scheduleCmd.Flags().DurationVar(
		&scheduleInterval, "interval", 0, "Sync interval (default from configuration)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Reload configuration on change while serving.
	go func() {
		err := file.Watch(ctx, configDir, func(*file.Config) {
			logger.Info("configuration reloaded")
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch unavailable: %v", err)
		}
	}()

	go func() {
		<-sigCh
		cmd.Println("Shutting down...")
		cancel()
	}()

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	if err := schedulerService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	return schedulerService.Stop()
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	merchantID := args[0]
	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	if err := schedulerService.EnsureTask(cmd.Context(), merchantID, platform, scheduleInterval); err != nil {
		return fmt.Errorf("schedule task: %w", err)
	}

	cmd.Printf("Scheduled recurring %s sync for %s.\n", platform, merchantID)
	return nil
}
