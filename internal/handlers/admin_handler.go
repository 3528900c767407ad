package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"puzzlebox/internal/models"
	"puzzlebox/internal/repository"
	"puzzlebox/internal/service"
)

// AdminHandler serves the catalog management endpoints. Admin views include
// retired levels.
type AdminHandler struct {
	catalog  *service.CatalogService
	userRepo *repository.UserRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalog *service.CatalogService, userRepo *repository.UserRepository) *AdminHandler {
	return &AdminHandler{catalog: catalog, userRepo: userRepo}
}

type levelRequest struct {
	Title     string `json:"title"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	SortOrder int    `json:"sortOrder"`
	Active    *bool  `json:"active"`
	ImageURL  string `json:"imageUrl"`
	AudioURL  string `json:"audioUrl"`
}

// ListLevels handles GET /api/admin/levels
func (h *AdminHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.catalog.ListAllLevels()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]levelResponse, 0, len(levels))
	for i := range levels {
		out = append(out, toLevelResponse(&levels[i]))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// GetLevel handles GET /api/admin/levels/{id}
func (h *AdminHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	level, err := h.catalog.GetLevel(levelID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toLevelResponse(level))
}

// CreateLevel handles POST /api/admin/levels
func (h *AdminHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	level, err := h.catalog.CreateLevel(req.Title, req.Rows, req.Cols, req.SortOrder, req.ImageURL, req.AudioURL)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toLevelResponse(level))
}

// UpdateLevel handles PUT /api/admin/levels/{id}
func (h *AdminHandler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Omitting "active" keeps the level active.
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	level, err := h.catalog.UpdateLevel(levelID, req.Title, req.Rows, req.Cols, req.SortOrder, active, req.ImageURL, req.AudioURL)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toLevelResponse(level))
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

// SetUserTier handles PUT /api/admin/users/{id}/tier. Billing decides tiers
// upstream; this is the support-side override.
func (h *AdminHandler) SetUserTier(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return
	}

	var req setTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Tier != models.TierFree && req.Tier != models.TierPro {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "tier must be free or pro")
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil {
		respondWithError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	if err := h.userRepo.SetSubscriptionTier(userID, req.Tier); err != nil {
		respondServiceError(w, err)
		return
	}

	user.SubscriptionTier = req.Tier
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// RetireLevel handles DELETE /api/admin/levels/{id}. The level is marked
// inactive rather than removed; player progress against it is kept.
func (h *AdminHandler) RetireLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := parseLevelID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid level id")
		return
	}

	if err := h.catalog.RetireLevel(levelID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
