package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/middleware"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter, actor models.Actor) ([]models.Student, *models.Pagination, error)
	Alerts(ctx context.Context, actor models.Actor) ([]models.FollowUpAlert, error)
	ActiveByYear(ctx context.Context) ([]models.YearCount, error)
	Create(ctx context.Context, req service.CreateStudentRequest, actor models.Actor) (*models.Student, error)
	Detail(ctx context.Context, rut string, actor models.Actor) (*service.StudentDetail, error)
	Update(ctx context.Context, rut string, input service.StudentInput, actor models.Actor) (*service.StudentUpdateResult, error)
	Reentry(ctx context.Context, rut string, req service.ReentryRequest, actor models.Actor) (*service.ReentryResult, error)
}

// StudentHandler exposes the student case endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Description Index of students; professionals only see their own caseload
// @Tags Students
// @Produce json
// @Param search query string false "Matches rut, names and surnames"
// @Param estado query string false "Program status"
// @Param show_archived query bool false "Include archived students"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Estado: strings.TrimSpace(c.Query("estado")),
	}
	filter.ShowArchived, _ = strconv.ParseBool(c.DefaultQuery("show_archived", "false"))
	filter.Page, filter.PageSize = pageParams(c)

	students, pagination, err := h.service.List(c.Request.Context(), filter, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Alerts godoc
// @Summary Follow-up alerts
// @Description Active students without a session, or whose last session is too old
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/alerts [get]
func (h *StudentHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(alerts))
	response.JSON(c, http.StatusOK, alerts, nil, middleware.ExtractMeta(c))
}

// ActiveByYear godoc
// @Summary Active students per entry year
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/active-by-year [get]
func (h *StudentHandler) ActiveByYear(c *gin.Context) {
	counts, err := h.service.ActiveByYear(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// Create godoc
// @Summary Register student
// @Description Registers a student and opens the first attention period when the intake reason is known
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.Create(c.Request.Context(), req, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Detail godoc
// @Summary Student case file
// @Description Student with age, sessions, change history, attention periods, last extension and discharge session
// @Tags Students
// @Produce json
// @Param rut path string true "Student RUT"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{rut} [get]
func (h *StudentHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("rut"), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Edit student
// @Description Applies the edit and records one change-history entry listing every modified field
// @Tags Students
// @Accept json
// @Produce json
// @Param rut path string true "Student RUT"
// @Param payload body service.StudentInput true "Student"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{rut} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var input service.StudentInput
	if !bindJSON(c, &input, "invalid student payload") {
		return
	}
	result, err := h.service.Update(c.Request.Context(), c.Param("rut"), input, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reentry godoc
// @Summary Register re-entry
// @Description Closes the current attention period and reopens the case as Activo (Reingreso)
// @Tags Students
// @Accept json
// @Produce json
// @Param rut path string true "Student RUT"
// @Param payload body service.ReentryRequest true "Re-entry"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{rut}/reentries [post]
func (h *StudentHandler) Reentry(c *gin.Context) {
	var req service.ReentryRequest
	if !bindJSON(c, &req, "invalid re-entry payload") {
		return
	}
	result, err := h.service.Reentry(c.Request.Context(), c.Param("rut"), req, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
