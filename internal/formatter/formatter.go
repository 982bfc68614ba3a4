// package formatter renders shuffle results and run history as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/ytshuffle/internal/models"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/desertthunder/ytshuffle/internal/tasks"
)

// Format is an output format for run history.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a flag value onto a [Format]. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// RunRecord is the serialized form of a [models.ShuffleRun].
type RunRecord struct {
	ID               string     `json:"id"`
	Sequence         int        `json:"sequence"`
	Service          string     `json:"service"`
	SourcePlaylistID string     `json:"source_playlist_id"`
	DestPlaylistID   string     `json:"dest_playlist_id,omitempty"`
	DestTitle        string     `json:"dest_title"`
	Visibility       string     `json:"visibility"`
	Passes           int        `json:"passes"`
	Seed             uint64     `json:"seed"`
	DryRun           bool       `json:"dry_run"`
	Status           string     `json:"status"`
	ItemsFetched     int        `json:"items_fetched"`
	ItemsUnique      int        `json:"items_unique"`
	ItemsPlaced      int        `json:"items_placed"`
	Error            string     `json:"error,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// NewRunRecord copies run into a [RunRecord].
func NewRunRecord(run *models.ShuffleRun) RunRecord {
	return RunRecord{
		ID:               run.ID(),
		Sequence:         run.Sequence(),
		Service:          run.Service(),
		SourcePlaylistID: run.SourcePlaylistID(),
		DestPlaylistID:   run.DestPlaylistID(),
		DestTitle:        run.DestTitle(),
		Visibility:       run.Visibility(),
		Passes:           run.Passes(),
		Seed:             run.Seed(),
		DryRun:           run.DryRun(),
		Status:           string(run.Status()),
		ItemsFetched:     run.ItemsFetched(),
		ItemsUnique:      run.ItemsUnique(),
		ItemsPlaced:      run.ItemsPlaced(),
		Error:            run.ErrorMessage(),
		StartedAt:        run.StartedAt(),
		CompletedAt:      run.CompletedAt(),
	}
}

// FormatRuns renders runs in the given format.
func FormatRuns(format Format, runs []*models.ShuffleRun) ([]byte, error) {
	switch format {
	case FormatText:
		return RunsToText(runs)
	case FormatCSV:
		return RunsToCSV(runs)
	case FormatMarkdown:
		return RunsToMarkdown(runs)
	case FormatJSON:
		return RunsToJSON(runs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// RunsToCSV converts runs to CSV with one header row.
func RunsToCSV(runs []*models.ShuffleRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Service", "Source", "Destination", "Title", "Status", "Fetched", "Unique", "Placed", "Passes", "Seed", "DryRun", "StartedAt", "Duration", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			strconv.Itoa(run.Sequence()),
			run.ID(),
			run.Service(),
			run.SourcePlaylistID(),
			run.DestPlaylistID(),
			run.DestTitle(),
			string(run.Status()),
			strconv.Itoa(run.ItemsFetched()),
			strconv.Itoa(run.ItemsUnique()),
			strconv.Itoa(run.ItemsPlaced()),
			strconv.Itoa(run.Passes()),
			strconv.FormatUint(run.Seed(), 10),
			strconv.FormatBool(run.DryRun()),
			formatTime(run.StartedAt(), time.RFC3339),
			shared.FormatDuration(run.Duration()),
			run.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunsToMarkdown converts runs to a Markdown table.
func RunsToMarkdown(runs []*models.ShuffleRun) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Shuffle History\n\n")
	buf.WriteString(fmt.Sprintf("**Runs**: %d\n\n", len(runs)))

	if len(runs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Started | Service | Source | Destination | Status | Placed | Passes |\n")
	buf.WriteString("|---|---------|---------|--------|-------------|--------|--------|--------|\n")
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %d/%d | %d |\n",
			run.Sequence(),
			formatTime(run.StartedAt(), time.DateTime),
			run.Service(),
			markdownCell(run.SourcePlaylistID()),
			markdownCell(destinationLabel(run)),
			statusLabel(run),
			run.ItemsPlaced(),
			run.ItemsUnique(),
			run.Passes(),
		))
	}

	return buf.Bytes(), nil
}

// RunsToText converts runs to one line each, followed by the error of failed runs.
func RunsToText(runs []*models.ShuffleRun) ([]byte, error) {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString("No shuffle runs recorded.\n")
		return buf.Bytes(), nil
	}

	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("#%d  %s  %s  %s -> %s  %s  %d/%d placed  (%s)\n",
			run.Sequence(),
			formatTime(run.StartedAt(), time.DateTime),
			run.Service(),
			run.SourcePlaylistID(),
			destinationLabel(run),
			statusLabel(run),
			run.ItemsPlaced(),
			run.ItemsUnique(),
			shared.FormatDuration(run.Duration()),
		))
		if run.ErrorMessage() != "" {
			for _, line := range strings.Split(run.ErrorMessage(), "\n") {
				buf.WriteString(fmt.Sprintf("    Error: %s\n", line))
			}
		}
	}

	return buf.Bytes(), nil
}

// RunsToJSON converts runs to an indented JSON array.
func RunsToJSON(runs []*models.ShuffleRun) ([]byte, error) {
	records := make([]RunRecord, len(runs))
	for i, run := range runs {
		records[i] = NewRunRecord(run)
	}
	return shared.MarshalJSON(records, true)
}

// ResultSummary is the one-line outcome of a successful shuffle.
func ResultSummary(result *tasks.RunResult) string {
	return fmt.Sprintf("Successfully shuffled %d items into new playlist %q", result.ItemsPlaced, result.DestinationTitle)
}

// ResultFailure is the one-line outcome of a failed shuffle, including the partial count already written.
func ResultFailure(result *tasks.RunResult) string {
	if result.Destination == nil {
		return fmt.Sprintf("Shuffle of %s failed before a playlist was created", result.SourceID)
	}
	return fmt.Sprintf("Placed %d of %d items into %q before failing", result.ItemsPlaced, result.ItemsUnique, result.Destination.Title)
}

// ResultRecord is the serialized form of a [tasks.RunResult].
type ResultRecord struct {
	SourceID      string   `json:"source_id"`
	DestinationID string   `json:"destination_id,omitempty"`
	Title         string   `json:"title"`
	Seed          uint64   `json:"seed"`
	Passes        int      `json:"passes"`
	ItemsFetched  int      `json:"items_fetched"`
	ItemsUnique   int      `json:"items_unique"`
	ItemsPlaced   int      `json:"items_placed"`
	RunID         string   `json:"run_id,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// ResultToJSON converts result to indented JSON.
func ResultToJSON(result *tasks.RunResult) ([]byte, error) {
	record := ResultRecord{
		SourceID:     result.SourceID,
		Title:        result.DestinationTitle,
		Seed:         result.Seed,
		Passes:       result.Passes,
		ItemsFetched: result.ItemsFetched,
		ItemsUnique:  result.ItemsUnique,
		ItemsPlaced:  result.ItemsPlaced,
	}
	if result.Destination != nil {
		record.DestinationID = result.Destination.ID
	}
	if result.Run != nil {
		record.RunID = result.Run.ID()
	}
	for _, err := range result.Errors {
		record.Errors = append(record.Errors, err.Error())
	}
	return shared.MarshalJSON(record, true)
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(layout)
}

func destinationLabel(run *models.ShuffleRun) string {
	if run.DestPlaylistID() == "" {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", run.DestTitle(), run.DestPlaylistID())
}

func statusLabel(run *models.ShuffleRun) string {
	if run.DryRun() {
		return string(run.Status()) + " (dry run)"
	}
	return string(run.Status())
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
