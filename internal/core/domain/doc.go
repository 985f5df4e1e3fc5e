// Package domain defines the core business entities for channelsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogItem: a product snapshot read from the merchant catalog
//   - PlatformCredential: a merchant's tokens for one platform
//   - SyncOutcome: the result of one push attempt for one item
//   - SyncReport: the user-visible result of one sync run
//   - Platform: identifier and registry of supported platforms
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
