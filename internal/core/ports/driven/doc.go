// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - CatalogStore: reads the merchant's active product snapshot
//   - CredentialStore: per-merchant, per-platform token persistence
//   - PublishLedger: append-only record of per-item sync outcomes
//   - PlatformAdapter: pushes items to one external platform
//   - AdapterFactory: creates adapters from stored credentials
//   - TokenProvider: supplies valid access tokens, refreshing as needed
//
// # Optional Interfaces
//
//   - SchedulerStore: persists recurring sync task state. Only required
//     when running the scheduler daemon.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
