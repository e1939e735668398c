package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/prdgen-api/internal/logger"
	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	emailService *services.EmailService
}

func NewShareHandler(emailService *services.EmailService) *ShareHandler {
	return &ShareHandler{emailService: emailService}
}

// ShareDocument emails a finished document to one recipient
func (h *ShareHandler) ShareDocument(c *gin.Context) {
	var req models.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var missing []string
	if strings.TrimSpace(req.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(req.Document) == "" {
		missing = append(missing, "document")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	err := h.emailService.SendDocumentEmail(req.To, req.ProductName, req.Document)
	if err != nil {
		if errors.Is(err, services.ErrSharingNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to share document", err, logger.Fields{
			"request_id": c.GetString("request_id"),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
