// package services defines the reader and writer capabilities the shuffle pipeline needs from a remote playlist provider
//
// YouTube Data API v3, Spotify Web API, dry run
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"golang.org/x/time/rate"
)

// Visibility controls who can see a newly created playlist.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// ParseVisibility maps a config or flag value onto a [Visibility].
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown visibility %q", shared.ErrInvalidArgument, s)
	}
}

// PlaylistEntry is one membership record in a remote playlist.
//
// EntryID identifies the membership itself; ItemID identifies the underlying video or track.
type PlaylistEntry struct {
	EntryID string
	ItemID  string
}

// ItemPage is one page of a playlist listing.
// NextPageToken is empty only on the final page.
type ItemPage struct {
	Items         []PlaylistEntry
	NextPageToken string
}

// PlaylistReader lists the entries of an existing playlist one page at a time.
type PlaylistReader interface {
	// ListItems returns up to pageSize entries starting at pageToken ("" for the first page).
	ListItems(ctx context.Context, playlistID string, pageSize int, pageToken string) (*ItemPage, error)
}

// PlaylistWriter creates playlists and appends items to their end.
type PlaylistWriter interface {
	// CreatePlaylist creates an empty playlist and returns its id.
	CreatePlaylist(ctx context.Context, title, description string, visibility Visibility) (string, error)

	// AppendItem appends itemID to the end of playlistID and returns the new entry id.
	AppendItem(ctx context.Context, playlistID, itemID string) (string, error)
}

// Service is a provider that can both read and write playlists.
type Service interface {
	PlaylistReader
	PlaylistWriter

	// Name returns the name of the service (e.g., "YouTube", "Spotify")
	Name() string
}

// newLimiter paces requests to rps per second; rps <= 0 disables pacing.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
