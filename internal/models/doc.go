// Package models defines the persistent entities of the shuffler.
//
// [ShuffleRun] records a single reshuffle: where it read from, what it created,
// how many items it fetched, kept and placed, and how it ended. It implements
// [Model] with generated ids, timestamps, validation and soft delete support.
//
// The [Repository] interface defines standard CRUD operations for database access.
package models
