package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytshuffle/internal/models"
	"github.com/desertthunder/ytshuffle/internal/shared"
)

// ErrRunNotFound is returned when a run does not exist or was deleted.
var ErrRunNotFound = errors.New("run not found")

var _ models.Repository[*models.ShuffleRun] = (*RunRepository)(nil)

const runColumns = `
	id, sequence, service, source_playlist_id, dest_playlist_id,
	dest_title, visibility, passes, seed, dry_run, status,
	items_fetched, items_unique, items_placed, error_message,
	started_at, completed_at, created_at, updated_at, deleted_at
`

// RunRepository implements models.Repository[*models.ShuffleRun] for run history.
//
// Seeds are stored bit-for-bit as signed integers; seeds of 2^63 and above read
// negative in raw SQL but scan back to the original uint64.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a generated ID and sequence.
func (r *RunRepository) Create(run *models.ShuffleRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	startedAt := run.CreatedAt()
	if run.StartedAt() != nil {
		startedAt = *run.StartedAt()
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Service(),
		run.SourcePlaylistID(),
		nullString(run.DestPlaylistID()),
		run.DestTitle(),
		run.Visibility(),
		run.Passes(),
		int64(run.Seed()),
		run.DryRun(),
		string(run.Status()),
		run.ItemsFetched(),
		run.ItemsUnique(),
		run.ItemsPlaced(),
		nullString(run.ErrorMessage()),
		startedAt,
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	if run.StartedAt() == nil {
		run.SetStartedAt(&startedAt)
	}
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.ShuffleRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Update writes the mutable fields of a run back to the database.
func (r *RunRepository) Update(run *models.ShuffleRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET dest_playlist_id = ?, dest_title = ?, visibility = ?, dry_run = ?,
			status = ?, items_fetched = ?, items_unique = ?, items_placed = ?,
			error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullString(run.DestPlaylistID()),
		run.DestTitle(),
		run.Visibility(),
		run.DryRun(),
		string(run.Status()),
		run.ItemsFetched(),
		run.ItemsUnique(),
		run.ItemsPlaced(),
		nullString(run.ErrorMessage()),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return expectOneRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves runs matching criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "service", "source_playlist_id", "status" (strings) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.ShuffleRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, column := range []string{"service", "source_playlist_id", "status"} {
		if v, ok := criteria[column].(string); ok && v != "" {
			query += " AND " + column + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ShuffleRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Latest returns the most recent run for a source playlist.
func (r *RunRepository) Latest(service, sourcePlaylistID string) (*models.ShuffleRun, error) {
	runs, err := r.List(map[string]any{"service": service, "source_playlist_id": sourcePlaylistID, "limit": 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs for %s", ErrRunNotFound, sourcePlaylistID)
	}
	return runs[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row from either [sql.Row] or [sql.Rows] into a [models.ShuffleRun]
func scanRun(row rowScanner) (*models.ShuffleRun, error) {
	var (
		id               string
		sequence         int
		service          string
		sourcePlaylistID string
		destPlaylistID   sql.NullString
		destTitle        string
		visibility       string
		passes           int
		seed             int64
		dryRun           bool
		status           string
		itemsFetched     int
		itemsUnique      int
		itemsPlaced      int
		errorMessage     sql.NullString
		startedAt        time.Time
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &service, &sourcePlaylistID, &destPlaylistID,
		&destTitle, &visibility, &passes, &seed, &dryRun, &status,
		&itemsFetched, &itemsUnique, &itemsPlaced, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewShuffleRun(sequence, service, sourcePlaylistID, passes, uint64(seed))
	run.SetID(id)
	run.SetDestTitle(destTitle)
	run.SetVisibility(visibility)
	run.SetDryRun(dryRun)
	run.SetStatus(models.RunStatus(status))
	run.SetItemsFetched(itemsFetched)
	run.SetItemsUnique(itemsUnique)
	run.SetItemsPlaced(itemsPlaced)
	run.SetStartedAt(&startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if destPlaylistID.Valid {
		run.SetDestPlaylistID(destPlaylistID.String)
	}
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", ErrRunNotFound, id)
	}
	return nil
}
