// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI follows a single shuffle through three views:
//  1. [ConfirmView] : Review the source, destination title and pass count
//  2. [ShuffleView] : Monitor real-time progress with a spinner and progress bar
//  3. [ResultView] : Display the summary, or every collected error
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The pipeline runs outside the model; callers forward its progress channel with [ProgressMsg] and report the outcome with [RunFinishedMsg].
//
// Keyboard navigation uses vim-style bindings (j/k, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
