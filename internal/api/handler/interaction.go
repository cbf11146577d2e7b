package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
	"github.com/hausmate/hausmate/internal/service"
)

// InteractionHandler handles like/dislike endpoints.
type InteractionHandler struct {
	interactions *service.InteractionService
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(interactions *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// InteractionRequest represents the interaction API request. Mode selects
// the discovery pool the interaction belongs to and defaults to flatmate.
type InteractionRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Mode     string `json:"mode"`
}

// Record handles POST /api/v1/interactions.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *InteractionHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Mode == "" {
		req.Mode = string(domain.SearchTypeFlatmate)
	}

	ctx = logger.SetProfileID(ctx, req.SourceID)

	result, err := h.interactions.Record(ctx, req.SourceID, req.TargetID,
		domain.InteractionKind(req.Type), domain.SearchType(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfInteraction):
			respondError(c, http.StatusBadRequest, "Cannot interact with own profile")
		case service.IsValidationError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			respondError(c, http.StatusNotFound, "Profile not found: "+req.TargetID)
		default:
			logger.CtxError(ctx, "Failed to record interaction: sourceId=%s, targetId=%s, error=%v",
				req.SourceID, req.TargetID, err)
			respondError(c, http.StatusInternalServerError, "Failed to record interaction")
		}
		return
	}

	respondSuccess(c, http.StatusOK, result)
}
