// Package services contains the core business logic of the sync
// engine: the batch orchestrator that turns a catalog snapshot into
// bounded concurrent chunk pushes, the coordinator that runs a full
// sync and records outcomes in the ledger, the adapter factory, and
// the recurring sync scheduler.
package services
