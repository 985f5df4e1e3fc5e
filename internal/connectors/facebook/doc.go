// Package facebook implements the platform adapter for Facebook Shops.
//
// Products are pushed into a commerce catalog via the Graph API's
// batch item endpoint. The adapter follows the driven port pattern
// defined in [driven.PlatformAdapter] and comprises:
//
//   - Adapter: prerequisite handling and chunk pushes
//   - Client: Graph API communication through the shared executor
//   - formatting helpers: Graph product shape with field truncation
//
// # Prerequisites
//
// Items live in a product catalog. Every sync run first resolves the
// catalog: a stored catalog ID is verified, otherwise the merchant's
// owned catalogs are searched by name, otherwise a catalog is created.
// The check is idempotent; running it twice never creates a duplicate.
//
// # Rate Limiting
//
// The Graph API reports usage as percentages in the X-App-Usage
// header and recovery hints in X-Business-Use-Case-Usage. Both feed
// the shared tracker; the ceiling is fixed at 100 since the header is
// already a percentage.
//
// # Error Codes
//
// Graph error codes 4, 17, 32 and 613 are rate-limit signals and are
// retried. Code 190 (OAuthException) means the access token is dead
// and surfaces immediately as authentication expiry. Anything else on
// a 4xx is permanent.
package facebook
