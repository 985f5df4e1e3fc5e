package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

var connectCmd = &cobra.Command{
	Use:   "connect <merchant-id> <platform>",
	Short: "Connect a merchant account to a platform",
	Long: `Stores platform credentials for a merchant.

The access token is prompted for securely unless --token is given.
Platform-specific identifiers (catalog, board, shop) are optional; when
omitted, the first sync finds or creates the container by name.

Examples:
  channelsync connect merchant-42 facebook
  channelsync connect merchant-42 tiktok --shop-id 7123456 --token "xxx"
  channelsync connect merchant-42 pinterest --refresh-token "yyy" --expires-in 30m`,
	Args: cobra.ExactArgs(2),
	RunE: runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <merchant-id> <platform>",
	Short: "Remove a merchant's platform credentials",
	Args:  cobra.ExactArgs(2),
	RunE:  runDisconnect,
}

// Flags for connect.
var (
	connectToken        string
	connectRefreshToken string
	connectExpiresIn    time.Duration
	connectShopID       string
	connectCatalogID    string
	connectPageID       string
	connectBoardID      string
)

func init() {
	connectCmd.Flags().StringVar(
		&connectToken, "token", "", "Access token (prompted securely when omitted)")
	connectCmd.Flags().StringVar(
		&connectRefreshToken, "refresh-token", "", "Refresh token, for platforms that rotate access tokens")
	connectCmd.Flags().DurationVar(
		&connectExpiresIn, "expires-in", 0, "Access token lifetime (0 for long-lived tokens)")
	connectCmd.Flags().StringVar(
		&connectShopID, "shop-id", "", "TikTok shop identifier")
	connectCmd.Flags().StringVar(
		&connectCatalogID, "catalog-id", "", "Facebook catalog identifier")
	connectCmd.Flags().StringVar(
		&connectPageID, "page-id", "", "Facebook business page identifier")
	connectCmd.Flags().StringVar(
		&connectBoardID, "board-id", "", "Pinterest board identifier")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	merchantID := args[0]
	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	token := connectToken
	if token == "" {
		cmd.Printf("Access token for %s: ", platform)
		token = readSecret()
		cmd.Println()
	}
	if token == "" {
		return errors.New("an access token is required")
	}

	cred := domain.PlatformCredential{
		ID:           uuid.NewString(),
		MerchantID:   merchantID,
		Platform:     platform,
		AccessToken:  token,
		RefreshToken: connectRefreshToken,
		ShopID:       connectShopID,
		CatalogID:    connectCatalogID,
		PageID:       connectPageID,
		BoardID:      connectBoardID,
	}
	if connectExpiresIn > 0 {
		cred.Expiry = time.Now().Add(connectExpiresIn)
	}

	if err := credentialStore.Save(cmd.Context(), cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	cmd.Printf("Connected %s to %s.\n", merchantID, platform)
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	merchantID := args[0]
	platform, err := domain.ParsePlatform(args[1])
	if err != nil {
		return err
	}

	if _, err := credentialStore.Get(cmd.Context(), merchantID, platform); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s is not connected for %s", platform, merchantID)
		}
		return fmt.Errorf("load credential: %w", err)
	}
	if err := credentialStore.Delete(cmd.Context(), merchantID, platform); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	cmd.Printf("Disconnected %s from %s.\n", merchantID, platform)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
