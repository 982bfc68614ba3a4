// Package repositories implements SQLite persistence for the shuffler's history.
//
// [RunRepository] stores one row per reshuffle with atomic sequence generation
// for human-readable ordering. Rows are soft deleted via deleted_at timestamps
// and excluded from queries by default.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
