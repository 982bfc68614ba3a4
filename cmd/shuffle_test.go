package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytshuffle/internal/formatter"
	"github.com/desertthunder/ytshuffle/internal/shared"
	tu "github.com/desertthunder/ytshuffle/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// newTestRunner wires a runner to service, an in-memory history database and an output buffer.
func newTestRunner(t *testing.T, service *tu.MockService) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Service: service,
		DB:      setupTestDB(t),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
	})
	return runner, output
}

func TestShuffle(t *testing.T) {
	t.Run("shuffles and prints the summary", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3", "V3", "V4")
		runner, output := newTestRunner(t, service)

		if err := runApp(t, runner, "shuffle", "--source", "PLsource", "--seed", "42", "--page-size", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `Successfully shuffled 4 items into new playlist "Workout Mix (`) {
			t.Errorf("expected summary line, got:\n%s", output.String())
		}
		if len(service.Lists) != 3 {
			t.Errorf("expected 3 page reads, got %d", len(service.Lists))
		}
		if service.Lists[0].PlaylistID != "PLsource" {
			t.Errorf("expected --source to override config, got %s", service.Lists[0].PlaylistID)
		}
		if len(service.Creates) != 1 {
			t.Fatalf("expected 1 playlist creation, got %d", len(service.Creates))
		}
		if service.Creates[0].Visibility != "public" {
			t.Errorf("expected public visibility, got %s", service.Creates[0].Visibility)
		}

		appended := service.AppendedIDs()
		if len(appended) != 4 {
			t.Fatalf("expected 4 appends, got %v", appended)
		}
		seen := make(map[string]bool)
		for _, id := range appended {
			seen[id] = true
		}
		for _, id := range []string{"V1", "V2", "V3", "V4"} {
			if !seen[id] {
				t.Errorf("expected %s to be appended", id)
			}
		}
	})

	t.Run("same seed gives the same order", func(t *testing.T) {
		order := func() []string {
			service := tu.NewMockService("V1", "V2", "V3", "V4", "V5", "V6")
			runner, _ := newTestRunner(t, service)
			if err := runApp(t, runner, "shuffle", "--seed", "7", "--passes", "3"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			return service.AppendedIDs()
		}

		first, second := order(), order()
		if strings.Join(first, ",") != strings.Join(second, ",") {
			t.Errorf("expected identical orders, got %v and %v", first, second)
		}
	})

	t.Run("applies destination flags", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2")
		runner, _ := newTestRunner(t, service)

		err := runApp(t, runner, "shuffle", "--title-prefix", "Morning Run", "--visibility", "private")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		created := service.Creates[0]
		if !strings.HasPrefix(created.Title, "Morning Run (") {
			t.Errorf("expected title prefix Morning Run, got %s", created.Title)
		}
		if created.Visibility != "private" {
			t.Errorf("expected private visibility, got %s", created.Visibility)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3")
		runner, output := newTestRunner(t, service)

		if err := runApp(t, runner, "shuffle", "--dry-run"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(service.Creates) != 0 || len(service.Appends) != 0 {
			t.Errorf("expected no writes, got %d creates and %d appends", len(service.Creates), len(service.Appends))
		}
		if !strings.Contains(output.String(), "Successfully shuffled 3 items") {
			t.Errorf("expected summary line, got:\n%s", output.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3")
		runner, output := newTestRunner(t, service)

		if err := runApp(t, runner, "shuffle", "--json", "--seed", "9"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var record formatter.ResultRecord
		if err := json.Unmarshal(output.Bytes(), &record); err != nil {
			t.Fatalf("failed to parse JSON output: %v\n%s", err, output.String())
		}
		if record.ItemsPlaced != 3 || record.Seed != 9 || record.DestinationID != "PLdest" {
			t.Errorf("unexpected record %+v", record)
		}
	})

	t.Run("append failure returns every error", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3", "V4", "V5")
		service.AppendErr = errors.New("quota exceeded")
		service.AppendErrAt = 3
		runner, output := newTestRunner(t, service)

		err := runApp(t, runner, "shuffle")
		if !errors.Is(err, shared.ErrRemoteWrite) {
			t.Fatalf("expected ErrRemoteWrite, got %v", err)
		}
		if strings.Contains(output.String(), "Successfully") {
			t.Error("summary should not be printed on failure")
		}
		if !strings.Contains(output.String(), `Placed 2 of 5 items into "Workout Mix (`) {
			t.Errorf("expected partial count, got:\n%s", output.String())
		}
		if len(service.Appends) != 3 {
			t.Errorf("expected rebuild to stop at the failing append, got %d calls", len(service.Appends))
		}

		var buf bytes.Buffer
		writeErrors(&buf, err)
		if !strings.HasPrefix(buf.String(), "Error: ") || !strings.Contains(buf.String(), "quota exceeded") {
			t.Errorf("unexpected error listing:\n%s", buf.String())
		}
	})

	t.Run("append failure with json output", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3", "V4", "V5")
		service.AppendErr = errors.New("quota exceeded")
		service.AppendErrAt = 3
		runner, output := newTestRunner(t, service)

		err := runApp(t, runner, "shuffle", "--json", "--no-history")
		if !errors.Is(err, shared.ErrRemoteWrite) {
			t.Fatalf("expected ErrRemoteWrite, got %v", err)
		}

		var record formatter.ResultRecord
		if err := json.Unmarshal(output.Bytes(), &record); err != nil {
			t.Fatalf("failed to parse JSON output: %v\n%s", err, output.String())
		}
		if record.ItemsPlaced != 2 || record.ItemsUnique != 5 || record.DestinationID != "PLdest" {
			t.Errorf("unexpected record %+v", record)
		}
		if len(record.Errors) != 1 || !strings.Contains(record.Errors[0], "quota exceeded") {
			t.Errorf("expected the append error in the record, got %v", record.Errors)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2")
		service.ListErr = errors.New("connection reset")
		runner, output := newTestRunner(t, service)

		err := runApp(t, runner, "shuffle", "--source", "PLsource")
		if !errors.Is(err, shared.ErrRemoteRead) {
			t.Fatalf("expected ErrRemoteRead, got %v", err)
		}
		if len(service.Creates) != 0 {
			t.Error("destination should not be created after a read failure")
		}
		if !strings.Contains(output.String(), "Shuffle of PLsource failed before a playlist was created") {
			t.Errorf("expected failure line, got:\n%s", output.String())
		}
	})

	t.Run("missing source", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockService("V1"))
		runner.config.Shuffle.SourcePlaylist = ""

		if err := runApp(t, runner, "shuffle"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid flags", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
		}{
			{name: "zero passes", args: []string{"--passes", "0"}},
			{name: "page size too large", args: []string{"--page-size", "51"}},
			{name: "unknown visibility", args: []string{"--visibility", "friends"}},
			{name: "unknown service", args: []string{"--service", "tidal"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				service := tu.NewMockService("V1")
				runner, _ := newTestRunner(t, service)

				err := runApp(t, runner, append([]string{"shuffle"}, tt.args...)...)
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				if len(service.Lists) != 0 {
					t.Error("nothing should be read with invalid settings")
				}
			})
		}
	})

	t.Run("records history", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2", "V3")
		runner, output := newTestRunner(t, service)

		if err := runApp(t, runner, "shuffle", "--seed", "5"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		output.Reset()

		if err := runApp(t, runner, "history", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var records []formatter.RunRecord
		if err := json.Unmarshal(output.Bytes(), &records); err != nil {
			t.Fatalf("failed to parse history: %v\n%s", err, output.String())
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 run, got %d", len(records))
		}
		if records[0].Status != "completed" || records[0].ItemsPlaced != 3 || records[0].Seed != 5 {
			t.Errorf("unexpected record %+v", records[0])
		}
	})

	t.Run("no history", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2")
		runner, output := newTestRunner(t, service)

		if err := runApp(t, runner, "shuffle", "--no-history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		output.Reset()

		if err := runApp(t, runner, "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "No shuffle runs recorded.\n" {
			t.Errorf("expected empty history, got %q", output.String())
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("limit and source filter", func(t *testing.T) {
		service := tu.NewMockService("V1", "V2")
		runner, output := newTestRunner(t, service)

		for _, source := range []string{"PLa", "PLb", "PLa"} {
			if err := runApp(t, runner, "shuffle", "--source", source); err != nil {
				t.Fatalf("shuffle %s failed: %v", source, err)
			}
		}
		output.Reset()

		if err := runApp(t, runner, "history", "--format", "csv", "--source", "PLa", "--limit", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and 1 row, got %d lines:\n%s", len(lines), output.String())
		}
		if !strings.Contains(lines[1], "PLa") {
			t.Errorf("expected PLa row, got %s", lines[1])
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockService())

		if err := runApp(t, runner, "history", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockService())

		if err := runApp(t, runner, "history", "--limit", "0"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("creates config and database", func(t *testing.T) {
		t.Chdir(t.TempDir())
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := runApp(t, runner, "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, "config.toml")
		tu.AssertFileExists(t, "ytshuffle.db")
		if content := tu.MustReadFile(t, "config.toml"); !strings.Contains(content, "[shuffle]") {
			t.Errorf("expected template config, got:\n%s", content)
		}
		if !strings.Contains(output.String(), "Database ready at ./ytshuffle.db (schema version 0)") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("keeps existing config", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "custom.toml")
		dbPath := filepath.Join(dir, "data", "history.db")
		content := "[database]\npath = \"" + dbPath + "\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := runApp(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dbPath)
		if tu.MustReadFile(t, configPath) != content {
			t.Error("existing config should not be overwritten")
		}
		if strings.Contains(output.String(), "Created") {
			t.Error("expected no config creation message")
		}
	})
}
