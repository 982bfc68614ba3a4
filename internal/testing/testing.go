// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/ytshuffle/internal/services"
)

// ListCall records one [MockService.ListItems] request.
type ListCall struct {
	PlaylistID string
	PageSize   int
	PageToken  string
}

// CreateCall records one [MockService.CreatePlaylist] request.
type CreateCall struct {
	Title       string
	Description string
	Visibility  services.Visibility
}

// AppendCall records one [MockService.AppendItem] request.
type AppendCall struct {
	PlaylistID string
	ItemID     string
}

// MockService is a recording test double for [services.Service].
//
// Entries are served in pages of the requested size with the offset as page token.
// The Err fields inject failures: ListErr on the ListErrPage-th read (1-based, 0 means every read),
// CreateErr on creation and AppendErr on the AppendErrAt-th append (1-based).
type MockService struct {
	Entries   []services.PlaylistEntry
	CreatedID string

	ListErr     error
	ListErrPage int
	CreateErr   error
	AppendErr   error
	AppendErrAt int

	mu      sync.Mutex
	Lists   []ListCall
	Creates []CreateCall
	Appends []AppendCall
}

// NewMockService serves itemIDs as a single source playlist.
func NewMockService(itemIDs ...string) *MockService {
	entries := make([]services.PlaylistEntry, len(itemIDs))
	for i, id := range itemIDs {
		entries[i] = services.PlaylistEntry{EntryID: fmt.Sprintf("E%d", i+1), ItemID: id}
	}
	return &MockService{Entries: entries, CreatedID: "PLdest"}
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) ListItems(ctx context.Context, playlistID string, pageSize int, pageToken string) (*services.ItemPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Lists = append(m.Lists, ListCall{PlaylistID: playlistID, PageSize: pageSize, PageToken: pageToken})
	if m.ListErr != nil && (m.ListErrPage == 0 || m.ListErrPage == len(m.Lists)) {
		return nil, m.ListErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", pageToken)
		}
		offset = n
	}

	end := min(offset+pageSize, len(m.Entries))
	page := &services.ItemPage{Items: append([]services.PlaylistEntry(nil), m.Entries[offset:end]...)}
	if end < len(m.Entries) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, title, description string, visibility services.Visibility) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Creates = append(m.Creates, CreateCall{Title: title, Description: description, Visibility: visibility})
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	return m.CreatedID, nil
}

func (m *MockService) AppendItem(ctx context.Context, playlistID, itemID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Appends = append(m.Appends, AppendCall{PlaylistID: playlistID, ItemID: itemID})
	if m.AppendErr != nil && m.AppendErrAt == len(m.Appends) {
		return "", m.AppendErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", playlistID, len(m.Appends)), nil
}

// AppendedIDs returns the item ids passed to AppendItem, in call order.
func (m *MockService) AppendedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, len(m.Appends))
	for i, c := range m.Appends {
		ids[i] = c.ItemID
	}
	return ids
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
