// Command channelsync pushes merchant product catalogs to social
// commerce platforms and keeps a durable ledger of publishing state.
package main

import (
	"fmt"
	"os"

	"github.com/storefront-labs/channelsync/internal/adapters/driven/auth"
	"github.com/storefront-labs/channelsync/internal/adapters/driven/config/file"
	"github.com/storefront-labs/channelsync/internal/adapters/driven/storage/sqlite"
	"github.com/storefront-labs/channelsync/internal/adapters/driving/cli"
	"github.com/storefront-labs/channelsync/internal/connectors/facebook"
	"github.com/storefront-labs/channelsync/internal/connectors/pinterest"
	"github.com/storefront-labs/channelsync/internal/connectors/request"
	"github.com/storefront-labs/channelsync/internal/connectors/tiktok"
	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetSetup(buildDeps)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps assembles the service graph from configuration. Called
// once per invocation, after flags are parsed.
func buildDeps(configDir string) (cli.Deps, error) {
	cfg, err := file.Load(configDir)
	if err != nil {
		return cli.Deps{}, fmt.Errorf("load configuration: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return cli.Deps{}, fmt.Errorf("open store: %w", err)
	}

	creds := store.CredentialStore()
	trackers := request.NewTrackerRegistry()

	providers := func(merchantID string, platform domain.Platform) driven.TokenProvider {
		pcfg := cfg.Platforms[string(platform)]
		oauthCfg := auth.OAuthConfig(platform, pcfg.ClientID, pcfg.ClientSecret)
		return auth.NewRefreshingProvider(merchantID, platform, creds, oauthCfg)
	}

	factory := services.NewFactory(creds, providers)
	registerPlatforms(factory, cfg, trackers)

	coordinator := services.NewCoordinator(store.CatalogStore(), store.Ledger(), factory)

	scheduler := services.NewScheduler(domain.SchedulerConfig{
		Enabled:         cfg.Scheduler.Enabled,
		DefaultInterval: cfg.Scheduler.DefaultInterval,
	}, store.SchedulerStore(), coordinator)

	return cli.Deps{
		Coordinator: coordinator,
		Credentials: creds,
		Ledger:      store.Ledger(),
		Factory:     factory,
		Scheduler:   scheduler,
		Version:     version,
	}, nil
}

// registerPlatforms wires one adapter builder per supported platform.
// Each builder shares the process-wide tracker registry so concurrent
// runs for the same merchant draw from one quota estimate.
func registerPlatforms(factory *services.Factory, cfg *file.Config, trackers *request.TrackerRegistry) {
	executorFor := func(cred *domain.PlatformCredential) *request.Executor {
		pcfg := cfg.Platforms[string(cred.Platform)]
		tracker := trackers.For(cred.MerchantID, cred.Platform, request.TrackerConfig{
			RequestsPerSecond: pcfg.RequestsPerSecond,
			Burst:             pcfg.Burst,
		})
		return request.NewExecutor(tracker, request.DefaultBackoff())
	}

	factory.Register(domain.PlatformFacebook, func(cred *domain.PlatformCredential, tokens driven.TokenProvider) (driven.PlatformAdapter, error) {
		return facebook.NewAdapter(cred, tokens, executorFor(cred)), nil
	})
	factory.Register(domain.PlatformPinterest, func(cred *domain.PlatformCredential, tokens driven.TokenProvider) (driven.PlatformAdapter, error) {
		return pinterest.NewAdapter(cred, tokens, executorFor(cred)), nil
	})
	factory.Register(domain.PlatformTikTok, func(cred *domain.PlatformCredential, tokens driven.TokenProvider) (driven.PlatformAdapter, error) {
		return tiktok.NewAdapter(cred, tokens, executorFor(cred)), nil
	})
}
