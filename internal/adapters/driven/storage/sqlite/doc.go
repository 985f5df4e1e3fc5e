// Package sqlite provides SQLite-backed implementations of the driven
// storage ports: the merchant catalog, platform credentials, the
// publishing ledger and scheduler state.
//
// A single Store owns the database handle; the individual port
// implementations are thin wrappers handed out by accessor methods.
// Schema changes ship as embedded .up.sql migrations applied in order
// on open.
package sqlite
