package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// LoadToken reads an OAuth2 token saved as JSON at path.
//
// The token must carry an access token, a refresh token, or both.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no token file configured", shared.ErrMissingCredentials)
	}

	data, err := os.ReadFile(shared.ExpandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: token file %s does not exist", shared.ErrMissingCredentials, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to parse token file %s: %w", shared.ErrInvalidConfig, path, err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file %s holds neither an access nor a refresh token", shared.ErrMissingCredentials, path)
	}

	return &token, nil
}

// YouTubeOAuthConfig builds the Google OAuth2 client config used to refresh YouTube tokens.
func YouTubeOAuthConfig(cfg shared.YouTubeConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeScope},
	}
}

// SpotifyOAuthConfig builds the Spotify OAuth2 client config used to refresh Spotify tokens.
func SpotifyOAuthConfig(cfg shared.SpotifyConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}
}

// TokenClient returns an HTTP client that attaches token to every request and refreshes it through conf when it expires.
func TokenClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
}
