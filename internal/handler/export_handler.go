package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/middleware"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

const csvContentType = "text/csv; charset=utf-8"

type exportService interface {
	StudentsCSV(ctx context.Context, actor models.Actor) (*service.CSVFile, error)
	SessionsCSV(ctx context.Context, actor models.Actor) (*service.CSVFile, error)
}

// ExportHandler streams the whole-table CSV downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Students godoc
// @Summary Download students CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/students.csv [get]
func (h *ExportHandler) Students(c *gin.Context) {
	h.send(c, h.service.StudentsCSV)
}

// Sessions godoc
// @Summary Download sessions CSV
// @Description Sessions with the student's entry date and the corrected flag
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/sessions.csv [get]
func (h *ExportHandler) Sessions(c *gin.Context) {
	h.send(c, h.service.SessionsCSV)
}

func (h *ExportHandler) send(c *gin.Context, render func(context.Context, models.Actor) (*service.CSVFile, error)) {
	file, err := render(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Total-Rows", strconv.Itoa(file.Rows))
	response.Attachment(c, file.Filename, csvContentType, file.Content)
}
