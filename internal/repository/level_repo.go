package repository

import (
	"database/sql"
	"fmt"
	"time"

	"puzzlebox/internal/database"
	"puzzlebox/internal/models"
)

// LevelRepository handles database operations for the level catalog
type LevelRepository struct {
	db *database.DB
}

// NewLevelRepository creates a new level repository
func NewLevelRepository(db *database.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

const levelColumns = "id, title, grid_rows, grid_cols, sort_order, active, image_url, audio_url, created_at, updated_at"

func scanLevel(row *sql.Row) (*models.Level, error) {
	level := &models.Level{}
	err := row.Scan(
		&level.ID,
		&level.Title,
		&level.Rows,
		&level.Cols,
		&level.SortOrder,
		&level.Active,
		&level.ImageURL,
		&level.AudioURL,
		&level.CreatedAt,
		&level.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	return level, nil
}

// ListActive retrieves all active levels ordered by their position in the progression
func (r *LevelRepository) ListActive() ([]models.Level, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM levels
		WHERE active = ?
		ORDER BY sort_order ASC
	`
	return r.list(query, true)
}

// ListAll retrieves every level including retired ones, for admin views
func (r *LevelRepository) ListAll() ([]models.Level, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM levels
		ORDER BY sort_order ASC
	`
	return r.list(query)
}

func (r *LevelRepository) list(query string, args ...interface{}) ([]models.Level, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	defer rows.Close()

	var levels []models.Level
	for rows.Next() {
		var level models.Level
		err := rows.Scan(
			&level.ID,
			&level.Title,
			&level.Rows,
			&level.Cols,
			&level.SortOrder,
			&level.Active,
			&level.ImageURL,
			&level.AudioURL,
			&level.CreatedAt,
			&level.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, level)
	}

	return levels, rows.Err()
}

// GetByID retrieves a level by ID regardless of its active flag
func (r *LevelRepository) GetByID(id int64) (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = ?`
	return scanLevel(r.db.QueryRow(query, id))
}

// GetActiveByID retrieves an active level by ID; retired levels are invisible here
func (r *LevelRepository) GetActiveByID(id int64) (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = ? AND active = ?`
	return scanLevel(r.db.QueryRow(query, id, true))
}

// GetActiveByOrder retrieves the active level at the given progression position,
// or nil when no active level sits there.
func (r *LevelRepository) GetActiveByOrder(order int) (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE sort_order = ? AND active = ?`
	return scanLevel(r.db.QueryRow(query, order, true))
}

// Create inserts a new level into the catalog
func (r *LevelRepository) Create(level *models.Level) (*models.Level, error) {
	query := `
		INSERT INTO levels (title, grid_rows, grid_cols, sort_order, active, image_url, audio_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		level.Title, level.Rows, level.Cols, level.SortOrder, level.Active, level.ImageURL, level.AudioURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}

	return r.GetByID(id)
}

// Update modifies an existing level's catalog entry
func (r *LevelRepository) Update(level *models.Level) error {
	query := `
		UPDATE levels
		SET title = ?, grid_rows = ?, grid_cols = ?, sort_order = ?, active = ?, image_url = ?, audio_url = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		level.Title, level.Rows, level.Cols, level.SortOrder, level.Active, level.ImageURL, level.AudioURL,
		time.Now().UTC(), level.ID)
	if err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}
	return nil
}

// Retire marks a level inactive without deleting it or any progress against it
func (r *LevelRepository) Retire(id int64) error {
	query := `UPDATE levels SET active = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, false, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to retire level: %w", err)
	}
	return nil
}
