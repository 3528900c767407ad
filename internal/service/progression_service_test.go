package service

import (
	"errors"
	"testing"
	"time"

	"puzzlebox/internal/models"
)

// fakeLevelStore serves a fixed catalog out of memory.
type fakeLevelStore struct {
	levels []models.Level
}

func (f *fakeLevelStore) ListActive() ([]models.Level, error) {
	active := make([]models.Level, 0, len(f.levels))
	for _, l := range f.levels {
		if l.Active {
			active = append(active, l)
		}
	}
	return active, nil
}

func (f *fakeLevelStore) GetActiveByID(id int64) (*models.Level, error) {
	for i := range f.levels {
		if f.levels[i].ID == id && f.levels[i].Active {
			return &f.levels[i], nil
		}
	}
	return nil, nil
}

func (f *fakeLevelStore) GetActiveByOrder(order int) (*models.Level, error) {
	for i := range f.levels {
		if f.levels[i].SortOrder == order && f.levels[i].Active {
			return &f.levels[i], nil
		}
	}
	return nil, nil
}

type progressKey struct {
	userID  int64
	levelID int64
}

// fakeProgressStore mimics the repository's natural-key upsert semantics,
// including monotone completion and an insert-only created_at.
type fakeProgressStore struct {
	records map[progressKey]*models.PuzzleProgress
	nextID  int64
	clock   func() time.Time
}

func newFakeProgressStore(clock func() time.Time) *fakeProgressStore {
	return &fakeProgressStore{
		records: make(map[progressKey]*models.PuzzleProgress),
		clock:   clock,
	}
}

func (f *fakeProgressStore) Get(userID, levelID int64) (*models.PuzzleProgress, error) {
	if rec, ok := f.records[progressKey{userID, levelID}]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeProgressStore) Upsert(userID, levelID int64, pieces []string, completed bool, completedAt *time.Time) (*models.PuzzleProgress, error) {
	now := f.clock()
	key := progressKey{userID, levelID}

	rec, ok := f.records[key]
	if !ok {
		f.nextID++
		rec = &models.PuzzleProgress{
			ID:        f.nextID,
			UserID:    userID,
			LevelID:   levelID,
			CreatedAt: now,
		}
		f.records[key] = rec
	}

	rec.PlacedPieces = pieces
	rec.Completed = rec.Completed || completed
	if rec.CompletedAt == nil {
		rec.CompletedAt = completedAt
	}
	rec.UpdatedAt = now

	clone := *rec
	return &clone, nil
}

func (f *fakeProgressStore) Delete(userID, levelID int64) error {
	delete(f.records, progressKey{userID, levelID})
	return nil
}

func (f *fakeProgressStore) ListForUser(userID int64) ([]models.PuzzleProgress, error) {
	var out []models.PuzzleProgress
	for key, rec := range f.records {
		if key.userID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeProgressStore) CountCreatedSince(userID int64, since time.Time) (int, error) {
	count := 0
	for key, rec := range f.records {
		if key.userID == userID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func testCatalog() *fakeLevelStore {
	return &fakeLevelStore{levels: []models.Level{
		{ID: 1, Title: "Meadow", Rows: 2, Cols: 2, SortOrder: 1, Active: true},
		{ID: 2, Title: "Harbor", Rows: 3, Cols: 3, SortOrder: 2, Active: true},
		{ID: 3, Title: "Mountain", Rows: 3, Cols: 3, SortOrder: 3, Active: true},
	}}
}

func newTestService(levels *fakeLevelStore) (*ProgressionService, *fakeProgressStore, *time.Time) {
	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	progress := newFakeProgressStore(clock)
	svc := NewProgressionService(levels, progress)
	svc.now = clock
	return svc, progress, &current
}

func freeUser() *models.User {
	return &models.User{ID: 10, Email: "free@example.com", SubscriptionTier: models.TierFree}
}

func proUser() *models.User {
	return &models.User{ID: 20, Email: "pro@example.com", SubscriptionTier: models.TierPro}
}

func gridPieces(n int) []string {
	pieces := make([]string, n)
	for i := range pieces {
		pieces[i] = string(rune('a'+i))
	}
	return pieces
}

func TestListLevelsUnlocking(t *testing.T) {
	svc, progress, _ := newTestService(testCatalog())
	user := freeUser()

	statuses, err := svc.ListLevels(user.ID)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("got %d levels, want 3", len(statuses))
	}

	if !statuses[0].Unlocked {
		t.Error("first level should always be unlocked")
	}
	if statuses[1].Unlocked || statuses[2].Unlocked {
		t.Error("later levels should be locked for a fresh user")
	}

	// Complete level 1 and the second level opens, the third stays shut.
	done := time.Now()
	if _, err := progress.Upsert(user.ID, 1, []string{"a", "b", "c", "d"}, true, &done); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	statuses, err = svc.ListLevels(user.ID)
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if !statuses[0].Completed {
		t.Error("first level should report completed")
	}
	if !statuses[1].Unlocked {
		t.Error("second level should unlock after first is completed")
	}
	if statuses[2].Unlocked {
		t.Error("third level should stay locked")
	}
}

func TestGetLevelLockedWithoutPredecessor(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())

	if _, _, err := svc.GetLevel(freeUser(), 2); !errors.Is(err, ErrLevelLocked) {
		t.Errorf("GetLevel(level 2) error = %v, want ErrLevelLocked", err)
	}
}

func TestGetLevelUnknownID(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())

	if _, _, err := svc.GetLevel(freeUser(), 99); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("GetLevel(99) error = %v, want ErrLevelNotFound", err)
	}
}

func TestUnlockGapDegradesOpen(t *testing.T) {
	// Order 2 is retired, so order 3 has no active predecessor and opens up.
	levels := &fakeLevelStore{levels: []models.Level{
		{ID: 1, Title: "Meadow", Rows: 2, Cols: 2, SortOrder: 1, Active: true},
		{ID: 2, Title: "Harbor", Rows: 3, Cols: 3, SortOrder: 2, Active: false},
		{ID: 3, Title: "Mountain", Rows: 3, Cols: 3, SortOrder: 3, Active: true},
	}}
	svc, _, _ := newTestService(levels)

	level, _, err := svc.GetLevel(freeUser(), 3)
	if err != nil {
		t.Fatalf("GetLevel(3) error = %v", err)
	}
	if level.ID != 3 {
		t.Errorf("level id = %d, want 3", level.ID)
	}
}

func TestUnlockIsLocalNotGlobal(t *testing.T) {
	svc, progress, _ := newTestService(testCatalog())
	user := proUser()

	// Completing only level 2 unlocks level 3 even though level 1 was never
	// completed.
	done := time.Now()
	if _, err := progress.Upsert(user.ID, 2, gridPieces(9), true, &done); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	if _, _, err := svc.GetLevel(user, 3); err != nil {
		t.Errorf("GetLevel(3) error = %v, want nil", err)
	}
}

func TestSaveProgressCompletesOnFullGrid(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())
	user := proUser()

	rec, err := svc.SaveProgress(user, 1, []string{"0-0", "0-1", "1-0"})
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	if rec.Completed {
		t.Error("3 of 4 pieces should not complete a 2x2 level")
	}

	rec, err = svc.SaveProgress(user, 1, []string{"0-0", "0-1", "1-0", "1-1"})
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	if !rec.Completed {
		t.Error("full 2x2 grid should complete the level")
	}
	if rec.CompletedAt == nil {
		t.Error("expected a completion timestamp")
	}
}

func TestSaveProgressDuplicatesDoNotComplete(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())

	rec, err := svc.SaveProgress(proUser(), 1, []string{"0-0", "0-0", "0-1", "0-1"})
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	if rec.Completed {
		t.Error("duplicated ids must not count toward completion")
	}
	if got := rec.PieceCount(); got != 2 {
		t.Errorf("piece count = %d, want 2", got)
	}
}

func TestSaveProgressCompletionIsSticky(t *testing.T) {
	svc, _, current := newTestService(testCatalog())
	user := proUser()

	rec, err := svc.SaveProgress(user, 1, gridPieces(4))
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	firstDone := rec.CompletedAt
	if firstDone == nil {
		t.Fatal("expected completion timestamp")
	}

	// A later, smaller save keeps the level completed with the original stamp.
	*current = current.Add(2 * time.Hour)
	rec, err = svc.SaveProgress(user, 1, []string{"a"})
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	if !rec.Completed {
		t.Error("completion must not be un-done by a smaller save")
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(*firstDone) {
		t.Errorf("completedAt = %v, want original %v", rec.CompletedAt, firstDone)
	}
}

func TestFreeTierDailyQuota(t *testing.T) {
	svc, progress, current := newTestService(testCatalog())
	user := freeUser()

	// First new level of the day is fine.
	if _, err := svc.SaveProgress(user, 1, []string{"0-0"}); err != nil {
		t.Fatalf("first SaveProgress() error = %v", err)
	}

	// Continuing the same level never hits the quota.
	if _, err := svc.SaveProgress(user, 1, []string{"0-0", "0-1"}); err != nil {
		t.Errorf("continuing save error = %v, want nil", err)
	}

	// Finish level 1 so level 2 is unlocked, then starting it the same day is
	// still denied by the quota.
	if _, err := svc.SaveProgress(user, 1, gridPieces(4)); err != nil {
		t.Fatalf("completing save error = %v", err)
	}
	if _, err := svc.SaveProgress(user, 2, []string{"0-0"}); !errors.Is(err, ErrDailyLimit) {
		t.Errorf("second new level error = %v, want ErrDailyLimit", err)
	}

	// Opening the already started level is always allowed.
	if _, _, err := svc.GetLevel(user, 1); err != nil {
		t.Errorf("GetLevel(started level) error = %v, want nil", err)
	}

	// Opening the never-started level is governed by the same quota.
	if _, _, err := svc.GetLevel(user, 2); !errors.Is(err, ErrDailyLimit) {
		t.Errorf("GetLevel(new level) error = %v, want ErrDailyLimit", err)
	}

	// The next UTC day resets the window.
	*current = current.Add(24 * time.Hour)
	if _, err := svc.SaveProgress(user, 2, []string{"0-0"}); err != nil {
		t.Errorf("next-day SaveProgress() error = %v, want nil", err)
	}

	if len(progress.records) != 2 {
		t.Errorf("got %d records, want 2", len(progress.records))
	}
}

func TestProUserBypassesQuota(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())
	user := proUser()

	if _, err := svc.SaveProgress(user, 1, gridPieces(4)); err != nil {
		t.Fatalf("SaveProgress(1) error = %v", err)
	}
	if _, err := svc.SaveProgress(user, 2, []string{"0-0"}); err != nil {
		t.Errorf("SaveProgress(2) same day error = %v, want nil", err)
	}
}

func TestResetProgressStartsOver(t *testing.T) {
	svc, _, current := newTestService(testCatalog())
	user := proUser()

	rec, err := svc.SaveProgress(user, 1, gridPieces(4))
	if err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}
	firstCreated := rec.CreatedAt

	if err := svc.ResetProgress(user.ID, 1); err != nil {
		t.Fatalf("ResetProgress() error = %v", err)
	}

	rec, err = svc.progress.Get(user.ID, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Fatal("expected no record after reset")
	}

	// A fresh save starts the level again with a new first-save timestamp and
	// no leftover completion.
	*current = current.Add(time.Hour)
	rec, err = svc.SaveProgress(user, 1, []string{"0-0"})
	if err != nil {
		t.Fatalf("SaveProgress() after reset error = %v", err)
	}
	if rec.Completed {
		t.Error("reset must clear completion")
	}
	if !rec.CreatedAt.After(firstCreated) {
		t.Errorf("createdAt = %v, want after %v", rec.CreatedAt, firstCreated)
	}
}

func TestResetProgressUnknownLevel(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())

	if err := svc.ResetProgress(10, 99); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("ResetProgress(99) error = %v, want ErrLevelNotFound", err)
	}
}
