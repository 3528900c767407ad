package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"puzzlebox/internal/database"
	"puzzlebox/internal/models"
)

// ProgressRepository handles database operations for per-user puzzle progress.
// The puzzle_progress table carries a UNIQUE(user_id, level_id) constraint, so
// the (user, level) natural key holds even under concurrent first saves.
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = "id, user_id, level_id, placed_pieces, piece_count, completed, completed_at, created_at, updated_at"

func scanProgress(scan func(dest ...interface{}) error) (*models.PuzzleProgress, error) {
	progress := &models.PuzzleProgress{}
	var piecesJSON string
	var completedAt sql.NullTime

	err := scan(
		&progress.ID,
		&progress.UserID,
		&progress.LevelID,
		&piecesJSON,
		new(int), // piece_count is derived, the JSON array is authoritative
		&progress.Completed,
		&completedAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		progress.CompletedAt = &completedAt.Time
	}
	if err := json.Unmarshal([]byte(piecesJSON), &progress.PlacedPieces); err != nil {
		return nil, fmt.Errorf("failed to decode placed pieces: %w", err)
	}

	return progress, nil
}

// Get retrieves the progress record for a (user, level) pair, or nil when the
// user has never saved this level.
func (r *ProgressRepository) Get(userID, levelID int64) (*models.PuzzleProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM puzzle_progress
		WHERE user_id = ? AND level_id = ?
	`
	progress, err := scanProgress(r.db.QueryRow(query, userID, levelID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// Upsert creates the progress record on first save (stamping created_at) or
// replaces the piece set on later saves, in one atomic statement per dialect.
// Completion state is computed by the caller; the SQL keeps it monotone under
// concurrent saves. Last write wins on the piece set.
func (r *ProgressRepository) Upsert(userID, levelID int64, pieces []string, completed bool, completedAt *time.Time) (*models.PuzzleProgress, error) {
	if pieces == nil {
		pieces = []string{}
	}
	piecesJSON, err := json.Marshal(pieces)
	if err != nil {
		return nil, fmt.Errorf("failed to encode placed pieces: %w", err)
	}

	now := time.Now().UTC()
	query := r.db.Dialect.UpsertProgress()
	_, err = r.db.Exec(query, userID, levelID, string(piecesJSON), len(pieces), completed, completedAt, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	return r.Get(userID, levelID)
}

// Delete removes the progress record for a (user, level) pair entirely. A
// later save recreates it from scratch with a fresh created_at.
func (r *ProgressRepository) Delete(userID, levelID int64) error {
	query := `DELETE FROM puzzle_progress WHERE user_id = ? AND level_id = ?`
	if _, err := r.db.Exec(query, userID, levelID); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// ListForUser retrieves all progress records belonging to a user
func (r *ProgressRepository) ListForUser(userID int64) ([]models.PuzzleProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM puzzle_progress
		WHERE user_id = ?
		ORDER BY level_id ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var records []models.PuzzleProgress
	for rows.Next() {
		progress, err := scanProgress(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, *progress)
	}

	return records, rows.Err()
}

// CountCreatedSince counts the user's progress records first saved at or after
// the given instant. Used by the daily quota check.
func (r *ProgressRepository) CountCreatedSince(userID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM puzzle_progress
		WHERE user_id = ? AND created_at >= ?
	`
	var count int
	if err := r.db.QueryRow(query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count progress: %w", err)
	}
	return count, nil
}
