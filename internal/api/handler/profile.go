package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
	"github.com/hausmate/hausmate/internal/service"
	"gorm.io/gorm"
)

// ProfileHandler serves assembled profile views.
type ProfileHandler struct {
	assembler *service.ProfileAssembler
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(assembler *service.ProfileAssembler) *ProfileHandler {
	return &ProfileHandler{assembler: assembler}
}

// ProfileRequest represents the profile view request. Minimal views carry
// only the discovery-card fields.
type ProfileRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Mode    string `json:"mode" binding:"required"`
	Minimal bool   `json:"minimal"`
}

// Get handles POST /api/v1/profile.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if !domain.SearchType(req.Mode).Valid() {
		respondError(c, http.StatusBadRequest, "Unknown mode: "+req.Mode)
		return
	}

	ctx = logger.SetProfileID(ctx, req.UserID)

	profile, err := h.assembler.Assemble(ctx, req.UserID, req.Minimal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Profile not found: "+req.UserID)
			return
		}
		logger.CtxError(ctx, "Failed to assemble profile: userId=%s, error=%v", req.UserID, err)
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if profile.SearchType != req.Mode {
		respondError(c, http.StatusNotFound, "Profile not found: "+req.UserID)
		return
	}

	respondSuccess(c, http.StatusOK, profile)
}
