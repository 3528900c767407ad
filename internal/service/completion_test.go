package service

import (
	"testing"
	"time"

	"puzzlebox/internal/models"
)

func TestDistinctPieces(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"0-0", "0-1", "1-0"}, []string{"0-0", "0-1", "1-0"}},
		{"duplicates dropped", []string{"0-0", "0-1", "0-0", "0-1"}, []string{"0-0", "0-1"}},
		{"first-seen order kept", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistinctPieces(tt.ids)
			if len(got) != len(tt.want) {
				t.Fatalf("DistinctPieces() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DistinctPieces()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEvaluateCompletion(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("full grid completes", func(t *testing.T) {
		completed, completedAt := EvaluateCompletion(9, 3, 3, nil, now)
		if !completed {
			t.Error("expected completed with full grid")
		}
		if completedAt == nil || !completedAt.Equal(now) {
			t.Errorf("completedAt = %v, want %v", completedAt, now)
		}
	})

	t.Run("one piece short stays incomplete", func(t *testing.T) {
		completed, completedAt := EvaluateCompletion(8, 3, 3, nil, now)
		if completed {
			t.Error("expected incomplete one piece short")
		}
		if completedAt != nil {
			t.Errorf("completedAt = %v, want nil", completedAt)
		}
	})

	t.Run("more pieces than grid still completes", func(t *testing.T) {
		completed, _ := EvaluateCompletion(10, 3, 3, nil, now)
		if !completed {
			t.Error("expected completed beyond full grid")
		}
	})

	t.Run("completion is sticky", func(t *testing.T) {
		firstDone := now.Add(-time.Hour)
		prior := &models.PuzzleProgress{Completed: true, CompletedAt: &firstDone}

		completed, completedAt := EvaluateCompletion(2, 3, 3, prior, now)
		if !completed {
			t.Error("expected completion to survive a smaller save")
		}
		if completedAt == nil || !completedAt.Equal(firstDone) {
			t.Errorf("completedAt = %v, want original %v", completedAt, firstDone)
		}
	})

	t.Run("incomplete prior does not complete a short save", func(t *testing.T) {
		prior := &models.PuzzleProgress{Completed: false}
		completed, _ := EvaluateCompletion(4, 3, 3, prior, now)
		if completed {
			t.Error("expected incomplete")
		}
	})
}
