package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync <merchant-id> <platform>",
	Short: "Push a merchant's catalog to a platform",
	Long: `Pushes the merchant's active product catalog to the given platform.

Every attempted item is recorded in the publishing ledger. Items the
platform rejects are reported but do not stop the run; expired
credentials halt the run and already-published items stay published.

Examples:
  channelsync sync merchant-42 facebook
  channelsync sync merchant-42 pinterest --verbose`,
	Args: cobra.ExactArgs(2),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncCoordinator == nil {
		return errors.New("sync service not configured")
	}

	merchantID := args[0]
	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	cmd.Printf("Synchronising %s catalog to %s...\n", merchantID, platform)

	report, err := syncWithProgress(cmd.Context(), cmd, merchantID, platform)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthExpired), errors.Is(err, domain.ErrAuthRequired):
			return fmt.Errorf("%w: run 'channelsync connect %s %s' to reconnect", err, merchantID, platform)
		case errors.Is(err, domain.ErrSyncInProgress):
			return fmt.Errorf("a sync for %s on %s is already running", merchantID, platform)
		}
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs the sync while polling status for progress.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, merchantID string, platform domain.Platform) (*domain.SyncReport, error) {
	type syncResult struct {
		report *domain.SyncReport
		err    error
	}
	resultCh := make(chan syncResult, 1)
	go func() {
		report, err := syncCoordinator.SyncCatalog(ctx, merchantID, platform)
		resultCh <- syncResult{report, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastResolved := 0
	for {
		select {
		case res := <-resultCh:
			return res.report, res.err
		case <-ticker.C:
			// Best effort; progress display only.
			status, statusErr := syncCoordinator.Status(ctx, merchantID, platform)
			if statusErr == nil && status != nil && status.ItemsResolved > lastResolved {
				cmd.Printf("\rPushed %d/%d items...", status.ItemsResolved, status.TotalItems)
				lastResolved = status.ItemsResolved
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	duration := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	cmd.Printf("\nRun %s finished in %s\n", report.RunID, duration)
	cmd.Printf("  Published: %d\n", report.Synced)
	cmd.Printf("  Failed:    %d\n", report.Failed)
	if report.AuthRequired {
		cmd.Println("  Credentials expired; reconnect required.")
	}
}
