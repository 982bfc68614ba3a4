package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase (0 when unknown)
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	Permute
	CreatePlaylist
	AppendItems
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case Permute:
		return "permute"
	case CreatePlaylist:
		return "create_playlist"
	case AppendItems:
		return "append_items"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchingSourceUpdate(sourceID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Message: fmt.Sprintf("Fetching source playlist %s...", sourceID),
	}
}

func fetchedPageUpdate(page, unique int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    page,
		Message: fmt.Sprintf("Read page %d (%d unique items so far)", page, unique),
	}
}

func foundSourceUpdate(set *SourceSet) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    set.Pages(),
		Total:   set.Pages(),
		Message: fmt.Sprintf("Found %d unique items (%d entries, %d pages)", set.Len(), set.Entries(), set.Pages()),
		Data:    set,
	}
}

func permutingUpdate(items, passes int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Permute,
		Step:    0,
		Total:   passes,
		Message: fmt.Sprintf("Shuffling %d items with %d passes...", items, passes),
	}
}

func permutedUpdate(items, passes int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Permute,
		Step:    passes,
		Total:   passes,
		Message: fmt.Sprintf("Shuffled %d items", items),
	}
}

func createDestinationUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", title),
	}
}

func createdDestinationUpdate(dest *Destination) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", dest.Title, dest.ID),
		Data:    dest,
	}
}

func appendItemUpdate(step, total int, itemID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, itemID),
	}
}

func appendFailedUpdate(step, total int, itemID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, itemID, err),
	}
}

func completeUpdate(result *RunResult) ProgressUpdate {
	msg := fmt.Sprintf("Successfully shuffled %d items into new playlist %q", result.ItemsPlaced, result.DestinationTitle)
	if len(result.Errors) > 0 {
		msg = fmt.Sprintf("Finished with %d error(s); %d items placed", len(result.Errors), result.ItemsPlaced)
	}
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    result,
	}
}
