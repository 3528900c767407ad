package models

import "time"

// Level represents one playable jigsaw puzzle in the progression.
// SortOrder positions the level in the overall sequence; catalog management
// keeps orders unique and dense among active levels.
type Level struct {
	ID        int64
	Title     string
	Rows      int
	Cols      int
	SortOrder int
	Active    bool
	ImageURL  string
	AudioURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PieceCount returns the number of pieces in the puzzle grid.
func (l *Level) PieceCount() int {
	return l.Rows * l.Cols
}
