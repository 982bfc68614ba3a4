package models

import (
	"errors"
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [ShuffleRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ShuffleRun records one reshuffle of a source playlist into a new destination playlist.
//
// Only counts and identifiers are stored. The computed order is never persisted.
type ShuffleRun struct {
	id               string
	sequence         int
	service          string
	sourcePlaylistID string
	destPlaylistID   string
	destTitle        string
	visibility       string
	passes           int
	seed             uint64
	dryRun           bool
	status           RunStatus
	itemsFetched     int
	itemsUnique      int
	itemsPlaced      int
	errorMessage     string
	startedAt        *time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewShuffleRun creates a pending run for sourcePlaylistID on service.
func NewShuffleRun(sequence int, service, sourcePlaylistID string, passes int, seed uint64) *ShuffleRun {
	now := time.Now()
	return &ShuffleRun{
		sequence:         sequence,
		service:          service,
		sourcePlaylistID: sourcePlaylistID,
		passes:           passes,
		seed:             seed,
		status:           RunPending,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (r *ShuffleRun) ID() string               { return r.id }
func (r *ShuffleRun) Sequence() int            { return r.sequence }
func (r *ShuffleRun) Service() string          { return r.service }
func (r *ShuffleRun) SourcePlaylistID() string { return r.sourcePlaylistID }
func (r *ShuffleRun) DestPlaylistID() string   { return r.destPlaylistID }
func (r *ShuffleRun) DestTitle() string        { return r.destTitle }
func (r *ShuffleRun) Visibility() string       { return r.visibility }
func (r *ShuffleRun) Passes() int              { return r.passes }
func (r *ShuffleRun) Seed() uint64             { return r.seed }
func (r *ShuffleRun) DryRun() bool             { return r.dryRun }
func (r *ShuffleRun) Status() RunStatus        { return r.status }
func (r *ShuffleRun) ItemsFetched() int        { return r.itemsFetched }
func (r *ShuffleRun) ItemsUnique() int         { return r.itemsUnique }
func (r *ShuffleRun) ItemsPlaced() int         { return r.itemsPlaced }
func (r *ShuffleRun) ErrorMessage() string     { return r.errorMessage }
func (r *ShuffleRun) StartedAt() *time.Time    { return r.startedAt }
func (r *ShuffleRun) CompletedAt() *time.Time  { return r.completedAt }
func (r *ShuffleRun) CreatedAt() time.Time     { return r.createdAt }
func (r *ShuffleRun) UpdatedAt() time.Time     { return r.updatedAt }
func (r *ShuffleRun) DeletedAt() *time.Time    { return r.deletedAt }

func (r *ShuffleRun) SetID(id string)                 { r.id = id }
func (r *ShuffleRun) SetSequence(sequence int)        { r.sequence = sequence }
func (r *ShuffleRun) SetDestPlaylistID(id string)     { r.destPlaylistID = id }
func (r *ShuffleRun) SetDestTitle(title string)       { r.destTitle = title }
func (r *ShuffleRun) SetVisibility(visibility string) { r.visibility = visibility }
func (r *ShuffleRun) SetDryRun(dryRun bool)           { r.dryRun = dryRun }
func (r *ShuffleRun) SetStatus(status RunStatus)      { r.status = status }
func (r *ShuffleRun) SetItemsFetched(n int)           { r.itemsFetched = n }
func (r *ShuffleRun) SetItemsUnique(n int)            { r.itemsUnique = n }
func (r *ShuffleRun) SetItemsPlaced(n int)            { r.itemsPlaced = n }
func (r *ShuffleRun) SetErrorMessage(msg string)      { r.errorMessage = msg }
func (r *ShuffleRun) SetStartedAt(t *time.Time)       { r.startedAt = t }
func (r *ShuffleRun) SetCompletedAt(t *time.Time)     { r.completedAt = t }
func (r *ShuffleRun) SetCreatedAt(t time.Time)        { r.createdAt = t }
func (r *ShuffleRun) SetUpdatedAt(t time.Time)        { r.updatedAt = t }
func (r *ShuffleRun) SetDeletedAt(t *time.Time)       { r.deletedAt = t }

// Start marks the run as running at t.
func (r *ShuffleRun) Start(t time.Time) {
	r.status = RunRunning
	r.startedAt = &t
}

// Finish marks the run completed, or failed when err is non-nil, at t.
func (r *ShuffleRun) Finish(t time.Time, err error) {
	r.completedAt = &t
	if err != nil {
		r.status = RunFailed
		r.errorMessage = err.Error()
		return
	}
	r.status = RunCompleted
	r.errorMessage = ""
}

// Duration is the time between start and completion, or zero if either is unset.
func (r *ShuffleRun) Duration() time.Duration {
	if r.startedAt == nil || r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(*r.startedAt)
}

// Validate checks the run for missing identifiers and inconsistent counts.
func (r *ShuffleRun) Validate() error {
	if r.service == "" {
		return errors.New("service is required")
	}
	if r.sourcePlaylistID == "" {
		return errors.New("source playlist id is required")
	}
	if r.passes < 1 {
		return fmt.Errorf("passes must be at least 1, got %d", r.passes)
	}
	switch r.status {
	case RunPending, RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("unknown status %q", r.status)
	}
	if r.itemsUnique > r.itemsFetched {
		return fmt.Errorf("unique items (%d) exceed fetched items (%d)", r.itemsUnique, r.itemsFetched)
	}
	if r.itemsPlaced > r.itemsUnique {
		return fmt.Errorf("placed items (%d) exceed unique items (%d)", r.itemsPlaced, r.itemsUnique)
	}
	return nil
}
