package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytshuffle/internal/formatter"
	"github.com/desertthunder/ytshuffle/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	ShuffleView
	ResultView
)

// RunInfo describes the shuffle the TUI is about to start.
type RunInfo struct {
	Service  string
	SourceID string
	Title    string
	Passes   int
	DryRun   bool
}

// Model represents the TUI application state.
//
// The model never runs the pipeline itself: it closes start once the user confirms and
// then renders whatever [ProgressMsg] and [RunFinishedMsg] values are sent to the program.
type Model struct {
	info     RunInfo
	view     ViewState
	start    chan<- struct{}
	started  bool
	width    int
	height   int
	spinner  spinner.Model
	bar      progress.Model
	progress tasks.ProgressUpdate
	result   *tasks.RunResult
	err      error
	errList  list.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a TUI model for info. With confirm set, the model waits for the user
// before closing start; otherwise start is closed as soon as the program runs.
func NewModel(info RunInfo, start chan<- struct{}, confirm bool) *Model {
	view := ConfirmView
	if !confirm {
		view = ShuffleView
	}

	errList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	errList.Title = "Errors"
	errList.SetShowStatusBar(false)
	errList.SetFilteringEnabled(false)
	errList.SetShowHelp(false)

	return &Model{
		info:    info,
		view:    view,
		start:   start,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient()),
		errList: errList,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the shuffle immediately when no confirmation is needed.
func (m *Model) Init() tea.Cmd {
	if m.view == ShuffleView {
		m.begin()
		return m.spinner.Tick
	}
	return nil
}

// View returns the current view state.
func (m *Model) View() string {
	var b strings.Builder
	switch m.view {
	case ConfirmView:
		b.WriteString(m.confirmView())
	case ShuffleView:
		b.WriteString(m.shuffleView())
	case ResultView:
		b.WriteString(m.resultView())
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.help.View(m.keys)))
	return b.String()
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-4, 10)
		m.errList.SetSize(msg.Width, max(msg.Height-8, 4))
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if m.view != ShuffleView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

// ViewState reports which screen the model is showing.
func (m *Model) ViewState() ViewState { return m.view }

// Result returns the finished run, or nil while it is still in flight.
func (m *Model) Result() *tasks.RunResult { return m.result }

// Err returns the error the run finished with.
func (m *Model) Err() error { return m.err }

func (m *Model) begin() {
	if m.started {
		return
	}
	m.started = true
	close(m.start)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ConfirmView:
		switch {
		case key.Matches(msg, m.keys.yes):
			m.view = ShuffleView
			m.begin()
			return m, m.spinner.Tick
		case key.Matches(msg, m.keys.no):
			return m, tea.Quit
		}
	case ResultView:
		if len(m.errList.Items()) > 0 {
			var cmd tea.Cmd
			m.errList, cmd = m.errList.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		if m.view == ShuffleView {
			m.progress = msg.data.(tasks.ProgressUpdate)
		}
	case MsgRunFinished:
		outcome := msg.data.(runOutcome)
		m.result = outcome.result
		m.err = outcome.err
		m.view = ResultView
		m.errList.SetItems(errorItems(m.runErrors()))
	}
	return m, nil
}

// runErrors lists each collected failure, falling back to the returned error when the
// run never produced a result.
func (m *Model) runErrors() []error {
	if m.result != nil && len(m.result.Errors) > 0 {
		return m.result.Errors
	}
	if m.err != nil {
		return []error{m.err}
	}
	return nil
}

func (m *Model) confirmView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Shuffle playlist?"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Service:     %s\n", m.info.Service)
	fmt.Fprintf(&b, "Source:      %s\n", m.info.SourceID)
	fmt.Fprintf(&b, "Destination: %s\n", m.info.Title)
	fmt.Fprintf(&b, "Passes:      %d\n", m.info.Passes)
	if m.info.DryRun {
		b.WriteString(styles.warn.Render("Dry run: nothing will be written"))
		b.WriteString("\n")
	}
	b.WriteString("\nContinue? (y/n)\n")
	return b.String()
}

func (m *Model) shuffleView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Shuffling %s", m.info.SourceID)))
	b.WriteString("\n")

	phase := m.progress.Phase.String()
	if m.progress.Message == "" {
		phase = "starting"
	}
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), phase)
	if m.progress.Message != "" {
		b.WriteString(m.progress.Message)
		b.WriteString("\n")
	}

	if m.progress.Total > 0 {
		percent := float64(m.progress.Step) / float64(m.progress.Total)
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(min(percent, 1)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) resultView() string {
	var b strings.Builder
	errs := m.runErrors()
	if len(errs) == 0 && m.result != nil {
		b.WriteString(styles.ok.Render("✓ " + formatter.ResultSummary(m.result)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ Shuffle finished with %d error(s)", len(errs))))
		b.WriteString("\n\n")
	}

	if r := m.result; r != nil {
		fmt.Fprintf(&b, "Fetched: %d entries, %d unique\n", r.ItemsFetched, r.ItemsUnique)
		fmt.Fprintf(&b, "Placed:  %d\n", r.ItemsPlaced)
		fmt.Fprintf(&b, "Seed:    %d\n", r.Seed)
		if r.Destination != nil {
			fmt.Fprintf(&b, "Playlist: %s (ID: %s)\n", r.Destination.Title, r.Destination.ID)
		}
	}

	if len(errs) > 0 {
		b.WriteString("\n")
		if m.width > 0 {
			b.WriteString(m.errList.View())
		} else {
			for _, err := range errs {
				b.WriteString(styles.err.Render("Error: " + err.Error()))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
