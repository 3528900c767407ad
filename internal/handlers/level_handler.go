package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"puzzlebox/internal/service"
	"puzzlebox/internal/validation"
)

// LevelHandler serves the player-facing level and progress endpoints
type LevelHandler struct {
	progression *service.ProgressionService
}

// NewLevelHandler creates a new level handler
func NewLevelHandler(progression *service.ProgressionService) *LevelHandler {
	return &LevelHandler{progression: progression}
}

type saveProgressRequest struct {
	PlacedPieces []string `json:"placedPieces"`
}

// List handles GET /api/levels: the ordered catalog annotated with the user's
// unlock and completion status.
func (h *LevelHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	statuses, err := h.progression.ListLevels(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]levelStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toLevelStatusResponse(s))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// Get handles GET /api/levels/{id}: a single level ready for play
func (h *LevelHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	level, progress, err := h.progression.GetLevel(user, levelID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, struct {
		levelResponse
		Progress *progressResponse `json:"progress,omitempty"`
	}{
		levelResponse: toLevelResponse(level),
		Progress:      toProgressResponse(progress),
	})
}

// SaveProgress handles PUT /api/levels/{id}/progress. The body carries the
// client's full placement state; the response is the stored record including
// any completion derived from it.
func (h *LevelHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	var req saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := validation.ValidatePieceIDs(req.PlacedPieces); err != nil {
		respondServiceError(w, err)
		return
	}

	record, err := h.progression.SaveProgress(user, levelID, req.PlacedPieces)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toProgressResponse(record))
}

// ResetProgress handles DELETE /api/levels/{id}/progress
func (h *LevelHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	if err := h.progression.ResetProgress(user.ID, levelID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

func parseLevelID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
