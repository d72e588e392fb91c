package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/response"
)

// CatalogHandler serves the enumerations used by client forms.
type CatalogHandler struct{}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// List godoc
// @Summary Catalog values
// @Description Every enumeration keyed by catalog name
// @Tags Catalogs
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /catalogs [get]
func (h *CatalogHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, catalog.All(), nil)
}
