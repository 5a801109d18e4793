// Package stepcache persists per-step workflow results so a verification run
// can resume after a crash without redoing completed work.
//
// A workflow is keyed by the trimmed input URL. Each named step stores one
// StepResult (ok with a JSON payload, or failed with a reason). Writes are
// idempotent upserts: once a step holds an ok result it is never overwritten,
// while a failed result may be upgraded to ok on a later run. The database is
// a cache, not an archive; schema changes bump the version in sqlite.go and
// users clear the database to adopt the new schema.
//
// Two backends implement the Store interface: SQLite (default, durable file
// on disk) and Redis (shared cache for multi-instance deployments). The
// orchestrator owns all mutation; this package holds no business logic.
package stepcache
