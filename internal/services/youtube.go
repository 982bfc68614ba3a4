// YouTube Data API v3 implementation of [Service]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const youtubeVideoKind = "youtube#video"

// YouTubeService implements [Service] against the YouTube Data API.
type YouTubeService struct {
	api     *youtube.Service
	limiter *rate.Limiter
}

// NewYouTubeService creates a YouTube service that sends requests through httpClient.
//
// httpClient is expected to authorize requests itself (see [TokenClient]).
// A non-empty cfg.Endpoint replaces the public API base URL.
func NewYouTubeService(ctx context.Context, cfg shared.YouTubeConfig, httpClient *http.Client) (*YouTubeService, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("%w: youtube service requires an http client", shared.ErrMissingCredentials)
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	api, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &YouTubeService{api: api, limiter: newLimiter(cfg.RequestsPerSecond)}, nil
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// ListItems lists one page of video ids in playlistID.
//
// Only the contentDetails part is requested.
func (y *YouTubeService) ListItems(ctx context.Context, playlistID string, pageSize int, pageToken string) (*ItemPage, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := y.api.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(int64(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, youtubeError("list playlist items", err)
	}

	page := &ItemPage{
		Items:         make([]PlaylistEntry, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		page.Items = append(page.Items, PlaylistEntry{
			EntryID: item.Id,
			ItemID:  item.ContentDetails.VideoId,
		})
	}

	return page, nil
}

// CreatePlaylist inserts a new playlist on the authenticated channel.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description string, visibility Visibility) (string, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}

	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       title,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{
			PrivacyStatus: string(visibility),
		},
	}

	created, err := y.api.Playlists.Insert([]string{"snippet", "status"}, playlist).Context(ctx).Do()
	if err != nil {
		return "", youtubeError("create playlist", err)
	}
	return created.Id, nil
}

// AppendItem inserts videoID at the end of playlistID.
func (y *YouTubeService) AppendItem(ctx context.Context, playlistID, videoID string) (string, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    youtubeVideoKind,
				VideoId: videoID,
			},
		},
	}

	inserted, err := y.api.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	if err != nil {
		return "", youtubeError("insert playlist item", err)
	}
	return inserted.Id, nil
}

// youtubeError classifies a Data API failure by status code.
func youtubeError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %s: %w", shared.ErrTokenExpired, op, err)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, err)
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %w", shared.ErrNotAuthenticated, op, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %w", shared.ErrPlaylistNotFound, op, err)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s: %w", shared.ErrServiceUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, err)
	}
}
