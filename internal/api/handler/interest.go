package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
	"github.com/hausmate/hausmate/internal/service"
)

// InterestHandler serves the interest catalog.
type InterestHandler struct {
	interests  service.InterestStore
	vocabulary *service.VocabularyCache
}

// NewInterestHandler creates a new interest handler.
func NewInterestHandler(interests service.InterestStore, vocabulary *service.VocabularyCache) *InterestHandler {
	return &InterestHandler{interests: interests, vocabulary: vocabulary}
}

// List handles GET /api/v1/interests.
func (h *InterestHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	interests, err := h.interests.List(ctx)
	if err != nil {
		logger.CtxError(ctx, "Failed to list interests: error=%v", err)
		respondError(c, http.StatusInternalServerError, "Failed to list interests")
		return
	}
	if interests == nil {
		interests = []domain.Interest{}
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"interests": interests,
		"total":     len(interests),
	})
}

// Refresh handles POST /api/v1/admin/interests/refresh. It drops the cached
// vocabulary snapshot so the next discovery request sees catalog changes
// immediately instead of waiting out the TTL.
func (h *InterestHandler) Refresh(c *gin.Context) {
	h.vocabulary.Invalidate()
	logger.CtxInfo(c.Request.Context(), "Interest vocabulary cache invalidated: client_ip=%s", c.ClientIP())
	respondSuccess(c, http.StatusOK, gin.H{"message": "Vocabulary cache invalidated"})
}
