package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/prdgen-api/internal/prompt"
	"github.com/gin-gonic/gin"
)

type FormatsHandler struct {
	catalog *prompt.Catalog
}

func NewFormatsHandler() *FormatsHandler {
	return &FormatsHandler{catalog: prompt.NewCatalog()}
}

// ListFormats returns the supported document formats for client UIs
func (h *FormatsHandler) ListFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": h.catalog.Formats(),
	})
}
