package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytshuffle/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunFinished
)

type runOutcome struct {
	result *tasks.RunResult
	err    error
}

// ProgressMsg is the constructor for [MsgProgressUpdate]
func ProgressMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// RunFinishedMsg is the constructor for [MsgRunFinished]
func RunFinishedMsg(result *tasks.RunResult, err error) Msg {
	return Msg{kind: MsgRunFinished, data: runOutcome{result: result, err: err}}
}
