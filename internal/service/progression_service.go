package service

import (
	"errors"
	"fmt"
	"time"

	"puzzlebox/internal/models"
)

var (
	// ErrLevelNotFound is returned when a level is absent or retired.
	ErrLevelNotFound = errors.New("level not found")
	// ErrLevelLocked is returned when the immediate predecessor level is
	// active and the user has not completed it.
	ErrLevelLocked = errors.New("level locked")
	// ErrDailyLimit is returned when a free user tries to start a second new
	// level within the same UTC day.
	ErrDailyLimit = errors.New("daily level limit reached")
)

// LevelStore is the slice of the catalog the progression logic reads.
// Implemented by repository.LevelRepository.
type LevelStore interface {
	ListActive() ([]models.Level, error)
	GetActiveByID(id int64) (*models.Level, error)
	GetActiveByOrder(order int) (*models.Level, error)
}

// ProgressStore is the progress persistence contract the progression logic
// writes through. Implemented by repository.ProgressRepository; Upsert must be
// atomic per (user, level).
type ProgressStore interface {
	Get(userID, levelID int64) (*models.PuzzleProgress, error)
	Upsert(userID, levelID int64, pieces []string, completed bool, completedAt *time.Time) (*models.PuzzleProgress, error)
	Delete(userID, levelID int64) error
	ListForUser(userID int64) ([]models.PuzzleProgress, error)
	CountCreatedSince(userID int64, since time.Time) (int, error)
}

// LevelStatus pairs a level with the requesting user's standing on it.
type LevelStatus struct {
	Level     models.Level
	Unlocked  bool
	Completed bool
	Progress  *models.PuzzleProgress
}

// ProgressionService decides which levels a user may play, tracks solving
// state, and enforces the free-tier daily quota.
type ProgressionService struct {
	levels   LevelStore
	progress ProgressStore
	now      func() time.Time
}

// NewProgressionService creates a new progression service
func NewProgressionService(levels LevelStore, progress ProgressStore) *ProgressionService {
	return &ProgressionService{
		levels:   levels,
		progress: progress,
		now:      time.Now,
	}
}

// ListLevels returns every active level in order, annotated with the user's
// unlock and completion status. Unlocking is computed in one pass: a level is
// unlocked when it is first in the progression or the user has completed the
// level at the previous position.
func (s *ProgressionService) ListLevels(userID int64) ([]LevelStatus, error) {
	levels, err := s.levels.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}

	records, err := s.progress.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	progressByLevel := make(map[int64]*models.PuzzleProgress, len(records))
	for i := range records {
		progressByLevel[records[i].LevelID] = &records[i]
	}

	completedOrders := make(map[int]bool, len(levels))
	for _, level := range levels {
		if rec, ok := progressByLevel[level.ID]; ok && rec.Completed {
			completedOrders[level.SortOrder] = true
		}
	}

	statuses := make([]LevelStatus, 0, len(levels))
	for _, level := range levels {
		rec := progressByLevel[level.ID]
		statuses = append(statuses, LevelStatus{
			Level:     level,
			Unlocked:  level.SortOrder == 1 || completedOrders[level.SortOrder-1],
			Completed: rec != nil && rec.Completed,
			Progress:  rec,
		})
	}

	return statuses, nil
}

// GetLevel fetches a single active level for play along with the user's
// progress on it, if any. The unlock check looks only at the immediate
// predecessor, and opening a level the user has never saved counts against the
// free-tier daily quota check.
func (s *ProgressionService) GetLevel(user *models.User, levelID int64) (*models.Level, *models.PuzzleProgress, error) {
	level, err := s.levels.GetActiveByID(levelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get level: %w", err)
	}
	if level == nil {
		return nil, nil, ErrLevelNotFound
	}

	rec, err := s.progress.Get(user.ID, levelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if err := s.authorize(user, level, rec); err != nil {
		return nil, nil, err
	}

	return level, rec, nil
}

// SaveProgress records the client's full placement state for a level. The
// record is created on first save; completion is derived from the distinct
// piece count against the level's grid and is never un-done by later saves.
func (s *ProgressionService) SaveProgress(user *models.User, levelID int64, pieceIDs []string) (*models.PuzzleProgress, error) {
	level, err := s.levels.GetActiveByID(levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	if level == nil {
		return nil, ErrLevelNotFound
	}

	existing, err := s.progress.Get(user.ID, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if err := s.authorize(user, level, existing); err != nil {
		return nil, err
	}

	pieces := DistinctPieces(pieceIDs)
	completed, completedAt := EvaluateCompletion(len(pieces), level.Rows, level.Cols, existing, s.now())

	return s.progress.Upsert(user.ID, levelID, pieces, completed, completedAt)
}

// ResetProgress deletes the user's record for a level entirely. A later save
// starts the level over, including a fresh first-save timestamp.
func (s *ProgressionService) ResetProgress(userID, levelID int64) error {
	level, err := s.levels.GetActiveByID(levelID)
	if err != nil {
		return fmt.Errorf("failed to get level: %w", err)
	}
	if level == nil {
		return ErrLevelNotFound
	}

	return s.progress.Delete(userID, levelID)
}

// authorize runs the unlock check and, for levels the user has no record on,
// the daily quota check.
func (s *ProgressionService) authorize(user *models.User, level *models.Level, existing *models.PuzzleProgress) error {
	if err := s.checkUnlocked(user.ID, level); err != nil {
		return err
	}
	if existing != nil {
		// Any existing record, even with zero pieces, counts as continuing.
		return nil
	}
	return s.checkQuota(user)
}

// checkUnlocked enforces the unlock policy for a single level: only the
// immediate predecessor is consulted, not the whole prefix chain. A gap in the
// active ordering degrades open.
func (s *ProgressionService) checkUnlocked(userID int64, level *models.Level) error {
	if level.SortOrder <= 1 {
		return nil
	}

	prev, err := s.levels.GetActiveByOrder(level.SortOrder - 1)
	if err != nil {
		return fmt.Errorf("failed to get predecessor level: %w", err)
	}
	if prev == nil {
		return nil
	}

	rec, err := s.progress.Get(userID, prev.ID)
	if err != nil {
		return fmt.Errorf("failed to get predecessor progress: %w", err)
	}
	if rec == nil || !rec.Completed {
		return ErrLevelLocked
	}
	return nil
}

// checkQuota enforces one newly started level per UTC day for free users. The
// day window is recomputed from the clock on every call. This is a
// count-then-decide check against the store, so concurrent first saves can
// slightly exceed the quota; the limit is advisory, not transactional.
func (s *ProgressionService) checkQuota(user *models.User) error {
	if !user.IsFreeTier() {
		return nil
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := s.progress.CountCreatedSince(user.ID, startOfDay)
	if err != nil {
		return fmt.Errorf("failed to count today's levels: %w", err)
	}
	if count >= 1 {
		return ErrDailyLimit
	}
	return nil
}
