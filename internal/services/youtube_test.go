package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func newTestYouTubeService(t *testing.T, handler http.HandlerFunc) *YouTubeService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewYouTubeService(context.Background(), shared.YouTubeConfig{Endpoint: server.URL + "/"}, server.Client())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("requires an http client", func(t *testing.T) {
			_, err := NewYouTubeService(context.Background(), shared.YouTubeConfig{}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Name", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {})
			if svc.Name() != "YouTube" {
				t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
			}
		})
	})

	t.Run("ListItems", func(t *testing.T) {
		t.Run("first page", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/youtube/v3/playlistItems" {
					t.Errorf("expected path /youtube/v3/playlistItems, got %s", r.URL.Path)
				}
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}

				q := r.URL.Query()
				if q.Get("playlistId") != "PLsource" {
					t.Errorf("expected playlistId PLsource, got %s", q.Get("playlistId"))
				}
				if q.Get("maxResults") != "2" {
					t.Errorf("expected maxResults 2, got %s", q.Get("maxResults"))
				}
				if q.Get("part") != "contentDetails" {
					t.Errorf("expected part contentDetails, got %s", q.Get("part"))
				}
				if q.Has("pageToken") {
					t.Errorf("expected no pageToken on first page, got %s", q.Get("pageToken"))
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"nextPageToken": "CAIQAA",
					"items": []map[string]any{
						{"id": "E1", "contentDetails": map[string]any{"videoId": "V1"}},
						{"id": "E2", "contentDetails": map[string]any{"videoId": "V2"}},
					},
				})
			})

			page, err := svc.ListItems(context.Background(), "PLsource", 2, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := &ItemPage{
				Items:         []PlaylistEntry{{EntryID: "E1", ItemID: "V1"}, {EntryID: "E2", ItemID: "V2"}},
				NextPageToken: "CAIQAA",
			}
			if diff := cmp.Diff(want, page); diff != "" {
				t.Errorf("unexpected page (-want +got):\n%s", diff)
			}
		})

		t.Run("passes the page token and skips entries without a video", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("pageToken"); got != "CAIQAA" {
					t.Errorf("expected pageToken CAIQAA, got %s", got)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{
						{"id": "E3", "contentDetails": map[string]any{"videoId": "V3"}},
						{"id": "E4"},
					},
				})
			})

			page, err := svc.ListItems(context.Background(), "PLsource", 2, "CAIQAA")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if page.NextPageToken != "" {
				t.Errorf("expected final page, got token %s", page.NextPageToken)
			}
			if diff := cmp.Diff([]PlaylistEntry{{EntryID: "E3", ItemID: "V3"}}, page.Items); diff != "" {
				t.Errorf("unexpected items (-want +got):\n%s", diff)
			}
		})

		t.Run("not found", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":{"code":404,"message":"playlist not found"}}`))
			})

			_, err := svc.ListItems(context.Background(), "PLmissing", 50, "")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("unauthorized", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
			})

			_, err := svc.ListItems(context.Background(), "PLsource", 50, "")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/youtube/v3/playlists" {
				t.Errorf("expected path /youtube/v3/playlists, got %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}

			var body struct {
				Snippet struct {
					Title       string `json:"title"`
					Description string `json:"description"`
				} `json:"snippet"`
				Status struct {
					PrivacyStatus string `json:"privacyStatus"`
				} `json:"status"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Snippet.Title != "Workout Mix (2024-03-09)" {
				t.Errorf("unexpected title %q", body.Snippet.Title)
			}
			if body.Snippet.Description != "Re-shuffled Workout Playlist" {
				t.Errorf("unexpected description %q", body.Snippet.Description)
			}
			if body.Status.PrivacyStatus != "unlisted" {
				t.Errorf("expected privacy unlisted, got %q", body.Status.PrivacyStatus)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"id": "PLnew"})
		})

		id, err := svc.CreatePlaylist(context.Background(), "Workout Mix (2024-03-09)", "Re-shuffled Workout Playlist", VisibilityUnlisted)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "PLnew" {
			t.Errorf("expected id PLnew, got %s", id)
		}
	})

	t.Run("AppendItem", func(t *testing.T) {
		t.Run("inserts a video resource", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/youtube/v3/playlistItems" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}

				var body struct {
					Snippet struct {
						PlaylistID string `json:"playlistId"`
						ResourceID struct {
							Kind    string `json:"kind"`
							VideoID string `json:"videoId"`
						} `json:"resourceId"`
					} `json:"snippet"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Snippet.PlaylistID != "PLnew" {
					t.Errorf("expected playlistId PLnew, got %s", body.Snippet.PlaylistID)
				}
				if body.Snippet.ResourceID.Kind != "youtube#video" || body.Snippet.ResourceID.VideoID != "V7" {
					t.Errorf("unexpected resource %+v", body.Snippet.ResourceID)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"id": "ENTRY7"})
			})

			id, err := svc.AppendItem(context.Background(), "PLnew", "V7")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "ENTRY7" {
				t.Errorf("expected entry id ENTRY7, got %s", id)
			}
		})

		t.Run("rejected insert", func(t *testing.T) {
			svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
			})

			_, err := svc.AppendItem(context.Background(), "PLnew", "V7")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		svc := newTestYouTubeService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		svc.limiter = newLimiter(0.001)
		svc.limiter.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := svc.ListItems(ctx, "PLsource", 50, ""); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
