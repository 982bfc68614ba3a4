// Package services defines the [PlaylistReader] and [PlaylistWriter] capabilities and implements them for YouTube and Spotify.
//
// # Reader and Writer
//
// The shuffle pipeline only ever lists a playlist page by page and creates a
// new playlist that it appends to one item at a time. [Service] combines both
// halves with a display name.
//
// # YouTube Implementation
//
// [YouTubeService] wraps the generated YouTube Data API v3 client. Listing
// requests only the contentDetails part since the pipeline needs video ids and
// nothing else. Appends insert a youtube#video resource at the end of the
// playlist.
//
// # Spotify Implementation
//
// [SpotifyService] talks to the Web API over plain HTTP. The continuation token
// for a listing is the "next" URL Spotify returns, and each append returns the
// playlist's new snapshot id.
//
// # Authorization
//
// Neither service runs an authorization flow. [LoadToken] reads a saved OAuth2
// token and [TokenClient] wraps it in a refreshing HTTP client.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : token rejected
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrServiceUnavailable] : provider returned 503
//   - [shared.ErrAPIRequest] : any other failed request
//
// # Pacing
//
// Every request waits on a [rate.Limiter] sized from requests_per_second.
package services
