package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
	tu "github.com/desertthunder/ytshuffle/internal/testing"
	"github.com/google/go-cmp/cmp"
)

// stuckReader always hands back the same continuation token.
type stuckReader struct{ calls int }

func (s *stuckReader) ListItems(ctx context.Context, playlistID string, pageSize int, pageToken string) (*services.ItemPage, error) {
	s.calls++
	return &services.ItemPage{Items: []services.PlaylistEntry{{ItemID: "V1"}}, NextPageToken: "again"}, nil
}

// nilReader returns neither a page nor an error.
type nilReader struct{}

func (nilReader) ListItems(context.Context, string, int, string) (*services.ItemPage, error) {
	return nil, nil
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestSourceSet(t *testing.T) {
	set := NewSourceSet()

	for _, id := range []string{"V1", "V2", "V1", "V3", "V2"} {
		set.Add(id)
	}

	if set.Len() != 3 {
		t.Errorf("expected 3 distinct ids, got %d", set.Len())
	}
	if set.Entries() != 5 {
		t.Errorf("expected 5 entries, got %d", set.Entries())
	}
	if diff := cmp.Diff([]string{"V1", "V2", "V3"}, set.IDs()); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if !set.Contains("V3") || set.Contains("V4") {
		t.Error("unexpected Contains result")
	}
	if set.Add("V3") {
		t.Error("adding an existing id should report false")
	}

	ids := set.IDs()
	ids[0] = "mutated"
	if set.IDs()[0] != "V1" {
		t.Error("IDs should return a copy")
	}

	if empty := NewSourceSet().IDs(); empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestFetchCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("reads pages in token order", func(t *testing.T) {
		reader := tu.NewMockService("V1", "V2", "V3", "V4", "V5")
		progress := make(chan ProgressUpdate, 20)

		set, err := FetchCollection(ctx, reader, "PLsource", 2, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []tu.ListCall{
			{PlaylistID: "PLsource", PageSize: 2, PageToken: ""},
			{PlaylistID: "PLsource", PageSize: 2, PageToken: "2"},
			{PlaylistID: "PLsource", PageSize: 2, PageToken: "4"},
		}
		if diff := cmp.Diff(want, reader.Lists); diff != "" {
			t.Errorf("unexpected reads (-want +got):\n%s", diff)
		}
		if set.Pages() != 3 {
			t.Errorf("expected 3 pages, got %d", set.Pages())
		}
		if diff := cmp.Diff([]string{"V1", "V2", "V3", "V4", "V5"}, set.IDs()); diff != "" {
			t.Errorf("unexpected ids (-want +got):\n%s", diff)
		}

		updates := drain(progress)
		if len(updates) != 5 {
			t.Fatalf("expected 5 progress updates, got %d", len(updates))
		}
		for _, u := range updates {
			if u.Phase != FetchSource {
				t.Errorf("expected fetch_source phase, got %s", u.Phase)
			}
		}
		if last := updates[len(updates)-1]; last.Data != set {
			t.Error("expected final update to carry the source set")
		}
	})

	t.Run("duplicates across pages collapse", func(t *testing.T) {
		reader := tu.NewMockService("V1", "V2", "V3", "V3", "V1", "V4")

		set, err := FetchCollection(ctx, reader, "PLsource", 2, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff([]string{"V1", "V2", "V3", "V4"}, set.IDs()); diff != "" {
			t.Errorf("unexpected ids (-want +got):\n%s", diff)
		}
		if set.Entries() != 6 {
			t.Errorf("expected 6 entries, got %d", set.Entries())
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		reader := tu.NewMockService()

		set, err := FetchCollection(ctx, reader, "PLsource", 50, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if set.Len() != 0 || set.Pages() != 1 {
			t.Errorf("expected one empty page, got %d ids over %d pages", set.Len(), set.Pages())
		}
	})

	t.Run("page failure aborts the fetch", func(t *testing.T) {
		cause := errors.New("connection reset")
		reader := tu.NewMockService("V1", "V2", "V3", "V4", "V5")
		reader.ListErr = cause
		reader.ListErrPage = 2

		set, err := FetchCollection(ctx, reader, "PLsource", 2, nil)
		if set != nil {
			t.Error("expected no source set on failure")
		}
		if !errors.Is(err, shared.ErrRemoteRead) {
			t.Errorf("expected ErrRemoteRead, got %v", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("expected cause to be wrapped, got %v", err)
		}
		if len(reader.Lists) != 2 {
			t.Errorf("expected no reads after the failure, got %d", len(reader.Lists))
		}
	})

	t.Run("repeated token", func(t *testing.T) {
		reader := &stuckReader{}
		if _, err := FetchCollection(ctx, reader, "PLsource", 50, nil); !errors.Is(err, shared.ErrRemoteRead) {
			t.Errorf("expected ErrRemoteRead, got %v", err)
		}
		if reader.calls != 2 {
			t.Errorf("expected 2 reads before giving up, got %d", reader.calls)
		}
	})

	t.Run("nil page", func(t *testing.T) {
		if _, err := FetchCollection(ctx, nilReader{}, "PLsource", 50, nil); !errors.Is(err, shared.ErrRemoteRead) {
			t.Errorf("expected ErrRemoteRead, got %v", err)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		tests := []struct {
			name     string
			reader   services.PlaylistReader
			source   string
			pageSize int
			want     error
		}{
			{name: "zero page size", reader: tu.NewMockService(), source: "PL", pageSize: 0, want: shared.ErrInvalidArgument},
			{name: "negative page size", reader: tu.NewMockService(), source: "PL", pageSize: -1, want: shared.ErrInvalidArgument},
			{name: "no reader", reader: nil, source: "PL", pageSize: 50, want: shared.ErrInvalidArgument},
			{name: "blank source", reader: tu.NewMockService(), source: " ", pageSize: 50, want: shared.ErrMissingArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := FetchCollection(ctx, tt.reader, tt.source, tt.pageSize, nil); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}
