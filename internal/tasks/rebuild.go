package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
)

// DestinationSpec describes the playlist a rebuild creates.
type DestinationSpec struct {
	Title       string
	Description string
	Visibility  services.Visibility
}

// Destination is a playlist created by [RebuildCollection].
type Destination struct {
	ID         string
	Title      string
	Visibility services.Visibility
	Appended   int // items appended so far, in permutation order
}

// AppendError identifies the append that stopped a rebuild.
// Position is 1-based within the permutation.
type AppendError struct {
	Position int
	Total    int
	ItemID   string
	Err      error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append %d of %d (item %s): %v", e.Position, e.Total, e.ItemID, e.Err)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}

// RebuildCollection creates a playlist from spec and appends perm to it in order.
//
// Each append is awaited before the next one is issued. A failed creation
// returns a nil [Destination]; a failed append returns the destination with
// the count appended before the failure and an [*AppendError]. Nothing already
// written is rolled back. Every failure wraps [shared.ErrRemoteWrite].
func RebuildCollection(ctx context.Context, writer services.PlaylistWriter, spec DestinationSpec, perm []string, progress chan<- ProgressUpdate) (*Destination, error) {
	if writer == nil {
		return nil, fmt.Errorf("%w: no playlist writer", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(spec.Title) == "" {
		return nil, fmt.Errorf("%w: destination title", shared.ErrMissingArgument)
	}

	sendProgress(progress, createDestinationUpdate(spec.Title))

	id, err := writer.CreatePlaylist(ctx, spec.Title, spec.Description, spec.Visibility)
	if err != nil {
		return nil, fmt.Errorf("%w: create playlist %q: %w", shared.ErrRemoteWrite, spec.Title, err)
	}

	dest := &Destination{ID: id, Title: spec.Title, Visibility: spec.Visibility}
	sendProgress(progress, createdDestinationUpdate(dest))

	total := len(perm)
	for i, itemID := range perm {
		if _, err := writer.AppendItem(ctx, dest.ID, itemID); err != nil {
			appendErr := &AppendError{Position: i + 1, Total: total, ItemID: itemID, Err: err}
			sendProgress(progress, appendFailedUpdate(i+1, total, itemID, err))
			return dest, fmt.Errorf("%w: playlist %s: %w", shared.ErrRemoteWrite, dest.ID, appendErr)
		}
		dest.Appended++
		sendProgress(progress, appendItemUpdate(i+1, total, itemID))
	}

	return dest, nil
}
