package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/service"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	covers *service.CoverService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(covers *service.CoverService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		covers: covers,
		logger: logger,
	}
}

// Stats returns cache counts by status and class.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.covers.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("collecting stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Recent lists the newest cache entries.
// Route: GET /api/v1/admin/recent?limit=20
func (h *AdminHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-200"})
		return
	}

	covers, err := h.covers.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing recent covers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"covers": covers})
}
