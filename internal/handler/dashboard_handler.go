package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/middleware"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, bool, error)
}

// DashboardHandler exposes the program statistics.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a new handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Program statistics
// @Description Students per status, top careers, sessions per month and intake reasons per year
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
