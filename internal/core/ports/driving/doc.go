// Package driving defines the interfaces that the outside world calls
// INTO the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI commands and the scheduler depend on these interfaces, and core
// services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driving
