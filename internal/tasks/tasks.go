// package tasks implements the read-shuffle-write pipeline for remote playlists.
//
// The core abstraction is ShuffleEngine, which fetches a source playlist, permutes its items and writes them to a new playlist.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytshuffle/internal/models"
	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/desertthunder/ytshuffle/internal/shuffle"
)

// RunRecorder persists run history. repositories.RunRepository implements it.
type RunRecorder interface {
	Create(run *models.ShuffleRun) error
	Update(run *models.ShuffleRun) error
}

// RunOpts configures a single reshuffle.
type RunOpts struct {
	SourceID    string              // Playlist to read
	PageSize    int                 // Entries requested per page
	Passes      int                 // Permutation passes, at least 1
	Seed        uint64              // Random seed; 0 derives one from the clock
	TitlePrefix string              // Destination title is "<prefix> (<date>)"
	Description string              // Destination description
	Visibility  services.Visibility // Destination visibility
	DryRun      bool                // Recorded in history only; the writer decides what is written
}

// RunResult contains everything a reshuffle produced, including partial progress.
type RunResult struct {
	SourceID         string
	Seed             uint64
	Passes           int
	ItemsFetched     int          // Entries read, duplicates included
	ItemsUnique      int          // Distinct items after deduplication
	ItemsPlaced      int          // Items appended to the destination
	DestinationTitle string       // Title the destination was (or would have been) created with
	Destination      *Destination // nil when the playlist was never created
	Run              *models.ShuffleRun
	Errors           []error // Every failure raised during the run, in order
}

// Err joins every collected failure, or returns nil when the run succeeded.
func (r *RunResult) Err() error {
	return errors.Join(r.Errors...)
}

func (r *RunResult) fail(err error) {
	r.Errors = append(r.Errors, err)
}

// ShuffleEngine runs the fetch, permute and rebuild stages against one service.
type ShuffleEngine struct {
	service  string
	reader   services.PlaylistReader
	writer   services.PlaylistWriter
	recorder RunRecorder
	logger   *log.Logger
	now      func() time.Time
}

// NewShuffleEngine creates an engine that reads through reader and writes through writer.
//
// service names the provider in run history.
func NewShuffleEngine(service string, reader services.PlaylistReader, writer services.PlaylistWriter, logger *log.Logger) *ShuffleEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ShuffleEngine{
		service: service,
		reader:  reader,
		writer:  writer,
		logger:  logger,
		now:     time.Now,
	}
}

// WithRecorder enables run history.
func (e *ShuffleEngine) WithRecorder(recorder RunRecorder) *ShuffleEngine {
	e.recorder = recorder
	return e
}

// WithClock replaces the clock used for titles, seeds and timestamps.
func (e *ShuffleEngine) WithClock(now func() time.Time) *ShuffleEngine {
	e.now = now
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validateOpts(opts RunOpts) error {
	if strings.TrimSpace(opts.SourceID) == "" {
		return fmt.Errorf("%w: source playlist id", shared.ErrMissingArgument)
	}
	if opts.Passes < 1 {
		return fmt.Errorf("%w: passes must be at least 1, got %d", shared.ErrInvalidArgument, opts.Passes)
	}
	if opts.PageSize < 1 {
		return fmt.Errorf("%w: page size must be at least 1, got %d", shared.ErrInvalidArgument, opts.PageSize)
	}
	if strings.TrimSpace(opts.TitlePrefix) == "" {
		return fmt.Errorf("%w: title prefix", shared.ErrMissingArgument)
	}
	return nil
}

// Run reshuffles opts.SourceID into a new playlist.
//
// Every failure is collected into [RunResult.Errors] and the returned error
// joins all of them. The result is always non-nil and reports whatever
// progress was made before the first pipeline failure.
func (e *ShuffleEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error) {
	result := &RunResult{SourceID: opts.SourceID, Passes: opts.Passes}

	if e.reader == nil || e.writer == nil {
		result.fail(fmt.Errorf("%w: %s reader or writer not initialized", shared.ErrServiceUnavailable, e.service))
		return result, result.Err()
	}
	if err := validateOpts(opts); err != nil {
		result.fail(err)
		return result, result.Err()
	}

	result.Seed = shuffle.ResolveSeed(opts.Seed)
	result.DestinationTitle = shared.DestinationTitle(opts.TitlePrefix, e.now())

	logger := shared.WithLogger(e.logger, "source", opts.SourceID, "service", e.service)
	result.Run = e.startRun(result, opts)

	pipelineErr := e.pipeline(ctx, progress, logger, result, opts)
	if pipelineErr != nil {
		result.fail(pipelineErr)
		logger.Error("shuffle failed", "error", pipelineErr, "placed", result.ItemsPlaced)
	} else {
		logger.Info("shuffle complete", "destination", result.Destination.ID, "title", result.DestinationTitle, "placed", result.ItemsPlaced)
	}

	e.finishRun(result, pipelineErr)

	sendProgress(progress, completeUpdate(result))
	return result, result.Err()
}

func (e *ShuffleEngine) pipeline(ctx context.Context, progress chan<- ProgressUpdate, logger *log.Logger, result *RunResult, opts RunOpts) error {
	set, err := FetchCollection(ctx, e.reader, opts.SourceID, opts.PageSize, progress)
	if err != nil {
		return err
	}
	result.ItemsFetched = set.Entries()
	result.ItemsUnique = set.Len()
	logger.Info("fetched source", "items", set.Len(), "entries", set.Entries(), "pages", set.Pages())

	sendProgress(progress, permutingUpdate(set.Len(), opts.Passes))
	perm, err := shuffle.Permute(set.IDs(), opts.Passes, shuffle.NewSource(result.Seed))
	if err != nil {
		return fmt.Errorf("shuffle %d items: %w", set.Len(), err)
	}
	sendProgress(progress, permutedUpdate(len(perm), opts.Passes))
	logger.Debug("permuted", "items", len(perm), "passes", opts.Passes, "seed", result.Seed)

	dest, err := RebuildCollection(ctx, e.writer, DestinationSpec{
		Title:       result.DestinationTitle,
		Description: opts.Description,
		Visibility:  opts.Visibility,
	}, perm, progress)
	if dest != nil {
		result.Destination = dest
		result.ItemsPlaced = dest.Appended
	}
	return err
}

// startRun records the run as started. A recording failure is collected and disables recording for this run.
func (e *ShuffleEngine) startRun(result *RunResult, opts RunOpts) *models.ShuffleRun {
	if e.recorder == nil {
		return nil
	}

	run := models.NewShuffleRun(0, e.service, opts.SourceID, opts.Passes, result.Seed)
	run.SetDestTitle(result.DestinationTitle)
	run.SetVisibility(string(opts.Visibility))
	run.SetDryRun(opts.DryRun)
	run.Start(e.now())

	if err := e.recorder.Create(run); err != nil {
		result.fail(fmt.Errorf("record run start: %w", err))
		return nil
	}
	return run
}

func (e *ShuffleEngine) finishRun(result *RunResult, pipelineErr error) {
	run := result.Run
	if e.recorder == nil || run == nil {
		return
	}

	run.SetItemsFetched(result.ItemsFetched)
	run.SetItemsUnique(result.ItemsUnique)
	run.SetItemsPlaced(result.ItemsPlaced)
	if result.Destination != nil {
		run.SetDestPlaylistID(result.Destination.ID)
	}
	run.Finish(e.now(), pipelineErr)

	if err := e.recorder.Update(run); err != nil {
		result.fail(fmt.Errorf("record run result: %w", err))
	}
}
