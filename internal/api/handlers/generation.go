package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/internal/prompt"
	"github.com/Conceptual-Machines/prdgen-api/internal/services"
	"github.com/gin-gonic/gin"
)

const doneSentinel = "[DONE]"

type GenerationHandler struct {
	service *services.GenerationService
}

func NewGenerationHandler(service *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

// fragmentFrame and errorFrame are the JSON payloads carried on SSE data lines.
type fragmentFrame struct {
	Text string `json:"text"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Generate streams a PRD over Server-Sent Events.
//
// Configuration and validation failures are reported as plain JSON before
// the stream opens. Once streaming has begun, a failure surfaces as a single
// {"error": ...} frame and the [DONE] sentinel is not sent.
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req models.GenerateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := models.DecodeImages(req.Images)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image payload: " + err.Error()})
		return
	}

	prepared, err := h.service.Prepare(c.Request.Context(), &req, images)
	if err != nil {
		status, body := prepareErrorResponse(err)
		c.JSON(status, body)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	startTime := time.Now()

	streamErr := h.service.Stream(c.Request.Context(), prepared, func(event services.Event) error {
		switch event.Type {
		case services.EventFragment:
			return writeFrame(c, fragmentFrame{Text: event.Text})
		case services.EventError:
			return writeFrame(c, errorFrame{Error: event.Message})
		case services.EventDone:
			_, writeErr := fmt.Fprintf(c.Writer, "data: %s\n\n", doneSentinel)
			c.Writer.Flush()
			return writeErr
		}
		return nil
	})

	if streamErr != nil {
		// Upstream failures were already delivered as an error frame; a sink
		// failure means the client went away mid-stream.
		log.Printf("❌ Generation stream ended with error after %v: %v", time.Since(startTime), streamErr)
	}
}

func writeFrame(c *gin.Context, frame interface{}) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
	return err
}

// prepareErrorResponse maps pre-stream failures to the documented status
// codes: 400 for a missing provider credential, 422 for missing required
// fields.
func prepareErrorResponse(err error) (int, gin.H) {
	var cfgErr *llm.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest, gin.H{"error": cfgErr.Error()}
	}

	var valErr *prompt.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusUnprocessableEntity, gin.H{
			"error": "Missing required fields: " + strings.Join(valErr.Missing, ", "),
		}
	}

	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}
