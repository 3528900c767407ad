package service

import (
	"fmt"

	"puzzlebox/internal/models"
	"puzzlebox/internal/repository"
	"puzzlebox/internal/validation"
)

// CatalogService handles the administrative side of the level catalog. Player
// reads go through ProgressionService; admin views see retired levels too.
type CatalogService struct {
	levelRepo *repository.LevelRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(levelRepo *repository.LevelRepository) *CatalogService {
	return &CatalogService{levelRepo: levelRepo}
}

// ListAllLevels returns every level, retired ones included
func (s *CatalogService) ListAllLevels() ([]models.Level, error) {
	return s.levelRepo.ListAll()
}

// GetLevel returns a level by ID regardless of its active flag
func (s *CatalogService) GetLevel(id int64) (*models.Level, error) {
	level, err := s.levelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, ErrLevelNotFound
	}
	return level, nil
}

// CreateLevel validates and inserts a new catalog entry. Keeping sort orders
// unique and dense among active levels is catalog-management discipline, not
// something enforced here.
func (s *CatalogService) CreateLevel(title string, rows, cols, sortOrder int, imageURL, audioURL string) (*models.Level, error) {
	if err := validation.ValidateLevelTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrid(rows, cols); err != nil {
		return nil, err
	}
	if err := validation.ValidateSortOrder(sortOrder); err != nil {
		return nil, err
	}

	level := &models.Level{
		Title:     title,
		Rows:      rows,
		Cols:      cols,
		SortOrder: sortOrder,
		Active:    true,
		ImageURL:  imageURL,
		AudioURL:  audioURL,
	}

	created, err := s.levelRepo.Create(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}
	return created, nil
}

// UpdateLevel validates and applies changes to an existing catalog entry
func (s *CatalogService) UpdateLevel(id int64, title string, rows, cols, sortOrder int, active bool, imageURL, audioURL string) (*models.Level, error) {
	level, err := s.GetLevel(id)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateLevelTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrid(rows, cols); err != nil {
		return nil, err
	}
	if err := validation.ValidateSortOrder(sortOrder); err != nil {
		return nil, err
	}

	level.Title = title
	level.Rows = rows
	level.Cols = cols
	level.SortOrder = sortOrder
	level.Active = active
	level.ImageURL = imageURL
	level.AudioURL = audioURL

	if err := s.levelRepo.Update(level); err != nil {
		return nil, fmt.Errorf("failed to update level: %w", err)
	}
	return s.GetLevel(id)
}

// RetireLevel marks a level inactive; progress against it is kept
func (s *CatalogService) RetireLevel(id int64) error {
	if _, err := s.GetLevel(id); err != nil {
		return err
	}
	return s.levelRepo.Retire(id)
}
