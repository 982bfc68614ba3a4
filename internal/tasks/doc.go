// Package tasks runs the read-shuffle-write pipeline with real-time progress reporting.
//
// # Stages
//
//  1. [FetchCollection] : read every page of the source playlist
//     - Pages are requested in continuation-token order, one at a time
//     - Item ids are collected into a [SourceSet], keeping the first occurrence
//
//  2. shuffle.Permute : reorder the distinct ids
//
//  3. [RebuildCollection] : create the destination and append in order
//     - Each append is awaited before the next one starts
//     - A failure leaves the partial playlist in place and reports an [AppendError]
//
// [ShuffleEngine.Run] chains the stages, titles the destination with the run
// date and collects every failure into [RunResult.Errors].
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] stores a row per run with counts and outcome.
// Recording failures are reported alongside pipeline failures.
package tasks
