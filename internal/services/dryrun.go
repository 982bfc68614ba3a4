package services

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytshuffle/internal/shared"
)

// DryRunWriter is a [PlaylistWriter] that logs what it would write and returns generated ids.
type DryRunWriter struct {
	logger *log.Logger

	mu       sync.Mutex
	appended map[string]int
}

// NewDryRunWriter creates a writer that reports through logger.
func NewDryRunWriter(logger *log.Logger) *DryRunWriter {
	return &DryRunWriter{logger: logger, appended: make(map[string]int)}
}

// CreatePlaylist pretends to create a playlist and returns a generated id.
func (d *DryRunWriter) CreatePlaylist(ctx context.Context, title, description string, visibility Visibility) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := "dryrun-" + shared.GenerateID()
	d.logger.Info("would create playlist", "id", id, "title", title, "visibility", visibility)
	return id, nil
}

// AppendItem pretends to append itemID and returns a generated entry id.
func (d *DryRunWriter) AppendItem(ctx context.Context, playlistID, itemID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.appended[playlistID]++
	position := d.appended[playlistID]
	d.mu.Unlock()

	d.logger.Debug("would append item", "playlist", playlistID, "item", itemID, "position", position)
	return shared.GenerateID(), nil
}

// Appended reports how many items were appended to playlistID.
func (d *DryRunWriter) Appended(playlistID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.appended[playlistID]
}
