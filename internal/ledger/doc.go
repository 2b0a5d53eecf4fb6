// Package ledger holds the application side of the allocation sum-equality invariant.
//
// Enforcement itself lives in PostgreSQL: statement-level AFTER triggers on the allocations table
// (db/init_pg_db.sql) collect the distinct (tenant, event, model version) keys touched by each statement
// and abort it when any key drifts from its event's revenue by more than domain.AllocationTolerance.
// Every write path, including ad hoc SQL, goes through them.
//
// This package computes the same key sets for batch planning, decodes the trigger's failure into
// *domain.InvariantViolationError, and offers a read-only verifier for operators.
package ledger
