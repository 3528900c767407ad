package service

import (
	"time"

	"puzzlebox/internal/models"
)

// DistinctPieces returns the distinct piece identifiers in first-seen order.
// Callers are expected to send unique ids; the count of distinct entries is
// what completion is judged on, so duplicates are dropped rather than rejected.
func DistinctPieces(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct
}

// EvaluateCompletion derives completion state for a save: a level is complete
// once the distinct placed pieces cover the whole grid. The evaluation runs on
// every save, but completion is sticky. Once a record has completed, a later
// save never flips it back or re-stamps completedAt, even if the client sends
// a smaller piece set.
func EvaluateCompletion(pieceCount, rows, cols int, prior *models.PuzzleProgress, now time.Time) (bool, *time.Time) {
	if prior != nil && prior.Completed {
		return true, prior.CompletedAt
	}

	if pieceCount >= rows*cols {
		completedAt := now
		return true, &completedAt
	}

	return false, nil
}
