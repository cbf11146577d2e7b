package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
	"github.com/hausmate/hausmate/internal/service"
)

// DiscoveryHandler handles discovery endpoints.
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
}

// NewDiscoveryHandler creates a new discovery handler.
// Parameters:
//   - discovery: discovery service instance.
//
// Returns:
//   - *DiscoveryHandler: initialized handler.
func NewDiscoveryHandler(discovery *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

// DiscoveryRequest represents the discovery API request.
type DiscoveryRequest struct {
	SourceID string                 `json:"sourceId" binding:"required"`
	Type     string                 `json:"type" binding:"required"`
	Filters  map[string]interface{} `json:"filters"`
}

// Discover handles POST /api/v1/discovery/profiles.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	ctx := c.Request.Context()

	var req DiscoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx = logger.SetProfileID(ctx, req.SourceID)
	ctx = logger.SetSearchType(ctx, req.Type)

	page, err := h.discovery.Discover(ctx, service.DiscoveryRequest{
		SourceID:   req.SourceID,
		SearchType: domain.SearchType(req.Type),
		Filters:    req.Filters,
	})
	if err != nil {
		switch {
		case service.IsValidationError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			respondError(c, http.StatusNotFound, "Profile not found: "+req.SourceID)
		default:
			logger.CtxError(ctx, "Discovery failed: sourceId=%s, error=%v", req.SourceID, err)
			respondError(c, http.StatusInternalServerError, "Discovery failed")
		}
		return
	}

	respondSuccess(c, http.StatusOK, page)
}
