package handlers

import (
	"time"

	"puzzlebox/internal/models"
	"puzzlebox/internal/service"
)

type userResponse struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	SubscriptionTier string `json:"subscriptionTier"`
	IsAdmin          bool   `json:"isAdmin,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type levelResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	PieceCount int    `json:"pieceCount"`
	SortOrder  int    `json:"sortOrder"`
	Active     bool   `json:"active"`
	ImageURL   string `json:"imageUrl,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
}

type progressResponse struct {
	LevelID      int64      `json:"levelId"`
	PlacedPieces []string   `json:"placedPieces"`
	PieceCount   int        `json:"pieceCount"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// levelStatusResponse is a catalog entry annotated with the requesting user's
// standing on it.
type levelStatusResponse struct {
	levelResponse
	Unlocked  bool              `json:"unlocked"`
	Completed bool              `json:"completed"`
	Progress  *progressResponse `json:"progress,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		SubscriptionTier: u.SubscriptionTier,
		IsAdmin:          u.IsAdmin,
	}
}

func toLevelResponse(l *models.Level) levelResponse {
	return levelResponse{
		ID:         l.ID,
		Title:      l.Title,
		Rows:       l.Rows,
		Cols:       l.Cols,
		PieceCount: l.PieceCount(),
		SortOrder:  l.SortOrder,
		Active:     l.Active,
		ImageURL:   l.ImageURL,
		AudioURL:   l.AudioURL,
	}
}

func toProgressResponse(p *models.PuzzleProgress) *progressResponse {
	if p == nil {
		return nil
	}
	pieces := p.PlacedPieces
	if pieces == nil {
		pieces = []string{}
	}
	return &progressResponse{
		LevelID:      p.LevelID,
		PlacedPieces: pieces,
		PieceCount:   p.PieceCount(),
		Completed:    p.Completed,
		CompletedAt:  p.CompletedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toLevelStatusResponse(s service.LevelStatus) levelStatusResponse {
	return levelStatusResponse{
		levelResponse: toLevelResponse(&s.Level),
		Unlocked:      s.Unlocked,
		Completed:     s.Completed,
		Progress:      toProgressResponse(s.Progress),
	}
}
