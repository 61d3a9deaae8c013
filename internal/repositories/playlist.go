package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist]
// for curation history.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist record with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, rating_key, name, prompt, model, requested, resolved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		playlist.RatingKey(),
		playlist.Name(),
		playlist.Prompt(),
		playlist.Model(),
		playlist.Requested(),
		playlist.Resolved(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist record by ID, excluding soft-deleted records
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, rating_key, name, prompt, model, requested, resolved, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scan(r.db.QueryRow(query, id))
}

// Delete soft-deletes a playlist record by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves playlist records matching the given criteria, newest
// first, excluding soft-deleted records
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, rating_key, name, prompt, model, requested, resolved, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if model, ok := criteria["model"].(string); ok && model != "" {
		query += " AND model = ?"
		args = append(args, model)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scan(row scanner) (*models.PersistedPlaylist, error) {
	var (
		id        string
		sequence  int
		ratingKey sql.NullString
		name      string
		prompt    string
		model     sql.NullString
		requested int
		resolved  int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &ratingKey, &name, &prompt, &model, &requested, &resolved, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("playlist not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(ratingKey.String, name, prompt, model.String, requested, resolved)
	playlist.SetID(id)
	playlist.SetSequence(sequence)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

// RecorderAdapter implements tasks.PlaylistRecorder using PlaylistRepository.
//
// History is best-effort bookkeeping: the adapter reports errors to the
// caller, which logs and continues rather than failing the curation.
type RecorderAdapter struct {
	repo *PlaylistRepository
}

// NewRecorderAdapter creates a new RecorderAdapter with the given repository
func NewRecorderAdapter(repo *PlaylistRepository) *RecorderAdapter {
	return &RecorderAdapter{repo: repo}
}

// Record persists a finished curation run.
func (a *RecorderAdapter) Record(playlist *models.PersistedPlaylist) error {
	if err := a.repo.Create(playlist); err != nil {
		return fmt.Errorf("failed to record playlist: %w", err)
	}
	return nil
}
