package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the publishing ledger",
	Long: `Query the append-only record of per-item sync outcomes.

The ledger never rewrites history: an item's current state on a
platform is its most recent row.`,
}

var ledgerLatestCmd = &cobra.Command{
	Use:   "latest <product-id> <platform>",
	Short: "Show a product's current publishing state on a platform",
	Args:  cobra.ExactArgs(2),
	RunE:  runLedgerLatest,
}

var ledgerHistoryCmd = &cobra.Command{
	Use:   "history <product-id> <platform>",
	Short: "Show a product's publishing history on a platform",
	Args:  cobra.ExactArgs(2),
	RunE:  runLedgerHistory,
}

var ledgerHistoryLimit int

func init() {
	ledgerHistoryCmd.Flags().IntVar(
		&ledgerHistoryLimit, "limit", 20, "Maximum number of rows to show")

	ledgerCmd.AddCommand(ledgerLatestCmd)
	ledgerCmd.AddCommand(ledgerHistoryCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerLatest(cmd *cobra.Command, args []string) error {
	if publishLedger == nil {
		return errors.New("ledger not configured")
	}

	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	outcome, err := publishLedger.Latest(cmd.Context(), args[0], platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s was never synced to %s", args[0], platform)
		}
		return fmt.Errorf("read ledger: %w", err)
	}

	printOutcome(cmd, outcome)
	return nil
}

func runLedgerHistory(cmd *cobra.Command, args []string) error {
	if publishLedger == nil {
		return errors.New("ledger not configured")
	}

	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	outcomes, err := publishLedger.History(cmd.Context(), args[0], platform, ledgerHistoryLimit)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if len(outcomes) == 0 {
		cmd.Printf("No history for product %s on %s.\n", args[0], platform)
		return nil
	}

	for i := range outcomes {
		printOutcome(cmd, &outcomes[i])
	}
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *domain.SyncOutcome) {
	line := fmt.Sprintf("%s  %-9s", outcome.Timestamp.Format(time.RFC3339), outcome.Status)
	switch outcome.Status {
	case domain.OutcomePublished:
		line += "  external-id=" + outcome.ExternalID
	case domain.OutcomeFailed:
		line += "  " + outcome.Reason
		if outcome.Retryable {
			line += " (retryable)"
		}
	case domain.OutcomeSkipped:
		line += "  " + outcome.Reason
	}
	cmd.Println(line)
}
