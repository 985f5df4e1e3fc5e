// Package cli implements the channelsync command-line interface.
//
// Commands are thin: they parse flags, call core services through the
// driving ports, and format output. All wiring happens in Wire, called
// by the composition root before Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/core/ports/driving"
	"github.com/storefront-labs/channelsync/internal/core/services"
	"github.com/storefront-labs/channelsync/internal/logger"
)

var version = "dev"

// Services the commands call. Set by Wire; nil until then so commands
// can guard against running unwired.
var (
	syncCoordinator  driving.SyncCoordinator
	credentialStore  driven.CredentialStore
	publishLedger    driven.PublishLedger
	adapterFactory   driven.AdapterFactory
	schedulerService *services.Scheduler
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "channelsync",
	Short: "Sync product catalogs to social commerce platforms",
	Long: `channelsync pushes merchant product catalogs to social commerce
platforms (Facebook, Pinterest, TikTok) and keeps a durable ledger of
every item's publishing state.

Connect a platform once with 'channelsync connect', then push with
'channelsync sync' or run the background scheduler with
'channelsync serve'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if setup == nil {
			return nil
		}
		deps, err := setup(configDir)
		if err != nil {
			return err
		}
		Wire(deps)
		return nil
	},
}

// setup builds the service graph once flags are parsed. Installed by
// the composition root; nil in tests, which wire services directly.
var setup func(configDir string) (Deps, error)

// SetSetup installs the service builder invoked before every command.
func SetSetup(fn func(configDir string) (Deps, error)) {
	setup = fn
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Configuration directory (default ~/.channelsync)")
}

// Deps carries the wired services into the CLI.
type Deps struct {
	Coordinator driving.SyncCoordinator
	Credentials driven.CredentialStore
	Ledger      driven.PublishLedger
	Factory     driven.AdapterFactory
	Scheduler   *services.Scheduler
	Version     string
}

// Wire installs the services the commands depend on.
func Wire(deps Deps) {
	syncCoordinator = deps.Coordinator
	credentialStore = deps.Credentials
	publishLedger = deps.Ledger
	adapterFactory = deps.Factory
	schedulerService = deps.Scheduler
	if deps.Version != "" {
		version = deps.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
