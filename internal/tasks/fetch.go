package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
)

// SourceSet holds the distinct item ids of a source playlist in order of first arrival.
type SourceSet struct {
	ids     []string
	seen    map[string]struct{}
	entries int
	pages   int
}

// NewSourceSet creates an empty set.
func NewSourceSet() *SourceSet {
	return &SourceSet{seen: make(map[string]struct{})}
}

// Add records id and reports whether it was new. Repeated ids are counted as entries but kept once.
func (s *SourceSet) Add(id string) bool {
	s.entries++
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id has been added.
func (s *SourceSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len is the number of distinct ids.
func (s *SourceSet) Len() int { return len(s.ids) }

// Entries is the number of playlist entries read, duplicates included.
func (s *SourceSet) Entries() int { return s.entries }

// Pages is the number of pages read to build the set.
func (s *SourceSet) Pages() int { return s.pages }

// IDs returns a copy of the distinct ids in order of first arrival.
func (s *SourceSet) IDs() []string {
	if s.ids == nil {
		return []string{}
	}
	return slices.Clone(s.ids)
}

// FetchCollection reads every page of sourceID and collects the distinct item ids.
//
// Pages are requested one after another, each with the continuation token of
// the previous page, until a page comes back without one. Any failed page
// aborts the fetch with an error wrapping [shared.ErrRemoteRead].
func FetchCollection(ctx context.Context, reader services.PlaylistReader, sourceID string, pageSize int, progress chan<- ProgressUpdate) (*SourceSet, error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: no playlist reader", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(sourceID) == "" {
		return nil, fmt.Errorf("%w: source playlist id", shared.ErrMissingArgument)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1, got %d", shared.ErrInvalidArgument, pageSize)
	}

	sendProgress(progress, fetchingSourceUpdate(sourceID))

	set := NewSourceSet()
	token := ""
	for {
		page, err := reader.ListItems(ctx, sourceID, pageSize, token)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d of %s: %w", shared.ErrRemoteRead, set.pages+1, sourceID, err)
		}
		if page == nil {
			return nil, fmt.Errorf("%w: page %d of %s: empty response", shared.ErrRemoteRead, set.pages+1, sourceID)
		}

		set.pages++
		for _, entry := range page.Items {
			set.Add(entry.ItemID)
		}
		sendProgress(progress, fetchedPageUpdate(set.pages, set.Len()))

		if page.NextPageToken == "" {
			break
		}
		if page.NextPageToken == token {
			return nil, fmt.Errorf("%w: page %d of %s repeated continuation token %q", shared.ErrRemoteRead, set.pages, sourceID, token)
		}
		token = page.NextPageToken
	}

	sendProgress(progress, foundSourceUpdate(set))
	return set, nil
}
