package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/metadata"
)

// SchemaHandler serves JSON schemas of document metadata bags.
type SchemaHandler struct {
	*BaseHandler
	registry *metadata.Registry
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(base *BaseHandler, registry *metadata.Registry) *SchemaHandler {
	return &SchemaHandler{BaseHandler: base, registry: registry}
}

// List returns the names of published schemas.
// GET /api/v1/schema
func (h *SchemaHandler) List(c *gin.Context) {
	h.OK(c, gin.H{"items": h.registry.Names()})
}

// Get returns the header and line schemas of one document type.
// GET /api/v1/schema/:name
func (h *SchemaHandler) Get(c *gin.Context) {
	def, ok := h.registry.Get(c.Param("name"))
	if !ok {
		h.Error(c, apperror.NewNotFound("schema", c.Param("name")))
		return
	}
	h.OK(c, def)
}
