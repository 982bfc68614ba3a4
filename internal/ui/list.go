package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytshuffle/internal/tasks"
)

var (
	_ list.Item = errorItem{}
)

// errorItem wraps one collected run error to implement [list.Item].
type errorItem struct {
	index int
	err   error
}

func (i errorItem) FilterValue() string { return i.err.Error() }
func (i errorItem) Title() string       { return fmt.Sprintf("Error %d", i.index+1) }
func (i errorItem) Description() string {
	var appendErr *tasks.AppendError
	if errors.As(i.err, &appendErr) {
		return fmt.Sprintf("item %s (%d of %d): %v", appendErr.ItemID, appendErr.Position, appendErr.Total, appendErr.Err)
	}
	return i.err.Error()
}

func errorItems(errs []error) []list.Item {
	items := make([]list.Item, len(errs))
	for i, err := range errs {
		items[i] = errorItem{index: i, err: err}
	}
	return items
}
