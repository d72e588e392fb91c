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

type sessionService interface {
	FormContext(ctx context.Context, rut string, actor models.Actor) (*service.SessionFormContext, error)
	Create(ctx context.Context, rut string, req service.SessionRequest, actor models.Actor) (*service.SessionResult, error)
	Get(ctx context.Context, id int64, actor models.Actor) (*service.SessionView, error)
	Update(ctx context.Context, id int64, req service.SessionEditRequest, actor models.Actor) (*service.SessionResult, error)
	Delete(ctx context.Context, id int64, actor models.Actor) error
}

// SessionHandler exposes follow-up session endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// FormContext godoc
// @Summary Session form context
// @Description Derivation visibility, reminder, correctable sessions and staff defaults
// @Tags Sessions
// @Produce json
// @Param rut path string true "Student RUT"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{rut}/sessions/form [get]
func (h *SessionHandler) FormContext(c *gin.Context) {
	form, err := h.service.FormContext(c.Request.Context(), c.Param("rut"), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Create godoc
// @Summary Record session
// @Description Stores a follow-up session and applies the status changes it carries to the student
// @Tags Sessions
// @Accept json
// @Produce json
// @Param rut path string true "Student RUT"
// @Param payload body service.SessionRequest true "Session"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{rut}/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.SessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	result, err := h.service.Create(c.Request.Context(), c.Param("rut"), req, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), id, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Edit session
// @Description Edits a session; a non-empty derivation status is promoted to the student
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body service.SessionEditRequest true "Session"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req service.SessionEditRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req, middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Param id path int true "Session ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.CurrentActor(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
