package models

import "time"

// PuzzleProgress records a user's placement state for one level. There is at
// most one record per (UserID, LevelID) pair, enforced by a unique constraint
// in the store. CreatedAt is the first-save time and never changes afterwards;
// a reset deletes the record, so a later save starts over with a fresh one.
type PuzzleProgress struct {
	ID           int64
	UserID       int64
	LevelID      int64
	PlacedPieces []string
	Completed    bool
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PieceCount returns the number of distinct placed pieces.
func (p *PuzzleProgress) PieceCount() int {
	return len(p.PlacedPieces)
}
