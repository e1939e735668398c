package services

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
	"github.com/Conceptual-Machines/prdgen-api/internal/logger"
	"github.com/Conceptual-Machines/prdgen-api/internal/metrics"
	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/internal/observability"
	"github.com/Conceptual-Machines/prdgen-api/internal/prompt"
)

// maxDocumentTokens caps a single generated document
const maxDocumentTokens = 4096

// providerResolver selects a provider for a model; satisfied by llm.ProviderFactory
type providerResolver interface {
	GetProvider(ctx context.Context, model string) (llm.Provider, error)
}

// GenerationService assembles prompts and streams documents from a provider
type GenerationService struct {
	cfg           *config.Config
	providers     providerResolver
	builder       *prompt.Builder
	cloudwatch    *metrics.Client
	sentryMetrics *metrics.SentryMetrics
}

// NewGenerationService creates the generation service
func NewGenerationService(cfg *config.Config, providers providerResolver, cloudwatch *metrics.Client) *GenerationService {
	return &GenerationService{
		cfg:           cfg,
		providers:     providers,
		builder:       prompt.NewBuilder(),
		cloudwatch:    cloudwatch,
		sentryMetrics: metrics.NewSentryMetrics(),
	}
}

// PreparedGeneration is a generation ready to stream: resolved provider,
// resolved model, and the assembled prompt
type PreparedGeneration struct {
	Provider llm.Provider
	Request  *llm.GenerationRequest
	Format   models.DocumentFormat
}

// Prepare resolves the model, provider, and prompt for one request.
// Provider configuration is checked before input validation so a missing
// API key is reported even when the inputs are incomplete.
func (s *GenerationService) Prepare(
	ctx context.Context,
	req *models.GenerateDocumentRequest,
	images []models.ReferenceImage,
) (*PreparedGeneration, error) {
	model := req.Model
	if model == "" {
		model = s.cfg.Model
	}

	provider, err := s.providers.GetProvider(ctx, model)
	if err != nil {
		return nil, err
	}

	// Unrecognized formats fall back to standard rather than failing
	format := models.DocumentFormat(req.FormatType)
	switch format {
	case models.FormatStandard, models.FormatOnePage, models.FormatAgileEpic, models.FormatFeatureBrief:
	default:
		format = models.FormatStandard
	}

	promptReq, err := s.builder.Build(req.DocumentInputs, format, images)
	if err != nil {
		return nil, err
	}

	return &PreparedGeneration{
		Provider: provider,
		Format:   format,
		Request: &llm.GenerationRequest{
			Model:           model,
			MaxOutputTokens: maxDocumentTokens,
			Prompt:          *promptReq,
		},
	}, nil
}

// Stream runs a prepared generation, relaying fragments to sink and
// recording metrics and traces once the stream ends
func (s *GenerationService) Stream(ctx context.Context, prepared *PreparedGeneration, sink EventSink) error {
	startTime := time.Now()

	trace := observability.GetClient().StartTrace(ctx, "document.generate", map[string]interface{}{
		"model":  prepared.Request.Model,
		"format": string(prepared.Format),
	})
	defer trace.Finish()

	gen := trace.Generation("document.stream", nil)
	gen.Input(map[string]interface{}{
		"model":        prepared.Request.Model,
		"format":       string(prepared.Format),
		"prompt_chars": promptChars(prepared.Request.Prompt.Content),
	})

	var result *llm.StreamResult
	var outputChars int
	err := Relay(func(emit llm.FragmentFunc) error {
		var streamErr error
		result, streamErr = prepared.Provider.StreamDocument(ctx, prepared.Request, emit)
		return streamErr
	}, func(event Event) error {
		if event.Type == EventFragment {
			outputChars += len(event.Text)
		}
		return sink(event)
	})

	duration := time.Since(startTime)
	success := err == nil

	s.cloudwatch.RecordGenerationDuration(duration, success)
	s.sentryMetrics.RecordGenerationDuration(ctx, duration, success)

	if err != nil {
		gen.SetLevel("ERROR")
		gen.Metadata(map[string]interface{}{"error": err.Error()})
		gen.Finish()
		logger.Error("Document generation failed", err, logger.Fields{
			"model":  prepared.Request.Model,
			"format": string(prepared.Format),
		})
		return err
	}

	gen.LogStreamResult(prepared.Request.Model, result, map[string]interface{}{
		"format":       string(prepared.Format),
		"output_chars": outputChars,
	})
	gen.Finish()

	s.cloudwatch.RecordTokenUsage(prepared.Request.Model,
		result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)
	s.sentryMetrics.RecordTokenUsage(ctx, prepared.Request.Model,
		result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)
	s.cloudwatch.RecordDocumentGenerated(string(prepared.Format), prepared.Request.Model)

	logger.LogGenerationRequest(ctx, prepared.Request.Model, duration, map[string]interface{}{
		"total_tokens":  result.Usage.TotalTokens,
		"input_tokens":  result.Usage.InputTokens,
		"output_tokens": result.Usage.OutputTokens,
	}, logger.Fields{
		"format":       string(prepared.Format),
		"fragments":    result.Fragments,
		"output_chars": outputChars,
		"cost":         observability.FormatCost(observability.CalculateCost(prepared.Request.Model, result.Usage)),
	})

	return nil
}

// promptChars reports the text size of an assembled prompt for tracing
func promptChars(content models.PromptContent) int {
	switch c := content.(type) {
	case models.TextPrompt:
		return len(c)
	case models.MultimodalPrompt:
		return len(c.Intro) + len(c.Prompt)
	default:
		return 0
	}
}
