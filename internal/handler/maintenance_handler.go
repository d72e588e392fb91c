package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/middleware"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

type maintenanceService interface {
	TrimText(ctx context.Context, actor models.Actor) (int64, error)
	BackfillPeriods(ctx context.Context, actor models.Actor) (*service.BackfillResult, error)
}

// MaintenanceHandler exposes the data-cleaning utilities to administrators.
type MaintenanceHandler struct {
	service maintenanceService
}

// NewMaintenanceHandler constructs a MaintenanceHandler.
func NewMaintenanceHandler(svc maintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{service: svc}
}

// TrimText godoc
// @Summary Trim student text
// @Description Strips surrounding whitespace from the student text columns
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/maintenance/trim-text [post]
func (h *MaintenanceHandler) TrimText(c *gin.Context) {
	affected, err := h.service.TrimText(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"estudiantes_actualizados": affected}, nil)
}

// BackfillPeriods godoc
// @Summary Backfill attention periods
// @Description Opens the initial attention period for students that have none
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/maintenance/backfill-periods [post]
func (h *MaintenanceHandler) BackfillPeriods(c *gin.Context) {
	result, err := h.service.BackfillPeriods(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
