// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyTrack represents the parts of a Spotify track the shuffler reads.
type SpotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil for episodes and removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents a paginated response of playlist tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [Service] for Spotify Web API interactions.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu     sync.Mutex
	userID string
}

// NewSpotifyService creates a Spotify service that sends requests through httpClient.
//
// httpClient is expected to authorize requests itself (see [TokenClient]).
func NewSpotifyService(cfg shared.SpotifyConfig, httpClient *http.Client) (*SpotifyService, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("%w: spotify service requires an http client", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	return &SpotifyService{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    newLimiter(cfg.RequestsPerSecond),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs a request to the Spotify API.
//
// endpoint is either a path relative to the base URL or an absolute URL previously returned by the API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: token refresh failed: %w", shared.ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return spotifyStatusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func spotifyStatusError(resp *http.Response) error {
	msg := fmt.Sprintf("spotify API error: status %d", resp.StatusCode)
	var errResp spotifyError
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
		msg = fmt.Sprintf("spotify API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// currentUserID returns the authenticated user's id, fetching it once.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

// ListItems lists one page of track ids in playlistID.
//
// The page token is the "next" URL of the previous page. Local files and
// episodes have no track id and are left out of the page.
func (s *SpotifyService) ListItems(ctx context.Context, playlistID string, pageSize int, pageToken string) (*ItemPage, error) {
	endpoint := pageToken
	if endpoint == "" {
		endpoint = fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=0", url.PathEscape(playlistID), pageSize)
	} else if !strings.HasPrefix(endpoint, s.baseURL) {
		return nil, fmt.Errorf("%w: page token %q does not belong to %s", shared.ErrInvalidArgument, pageToken, s.baseURL)
	}

	var response SpotifyPaginatedPlaylistTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &ItemPage{Items: make([]PlaylistEntry, 0, len(response.Items))}
	if response.Next != nil {
		page.NextPageToken = *response.Next
	}

	for i, item := range response.Items {
		if item.IsLocal || item.Track == nil || item.Track.ID == "" {
			continue
		}
		page.Items = append(page.Items, PlaylistEntry{
			EntryID: strconv.Itoa(response.Offset + i),
			ItemID:  item.Track.ID,
		})
	}

	return page, nil
}

// CreatePlaylist creates a playlist owned by the authenticated user.
//
// Spotify has no unlisted playlists, so anything other than [VisibilityPublic] is created private.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, title, description string, visibility Visibility) (string, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"name":        title,
		"description": description,
		"public":      visibility == VisibilityPublic,
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return "", err
	}
	return playlist.ID, nil
}

// AppendItem adds trackID to the end of playlistID and returns the resulting snapshot id.
func (s *SpotifyService) AppendItem(ctx context.Context, playlistID, trackID string) (string, error) {
	body := map[string]any{
		"uris": []string{"spotify:track:" + trackID},
	}

	var response struct {
		SnapshotID string `json:"snapshot_id"`
	}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}
