package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
)

const (
	providerNameGemini = "gemini"

	// Gemini uses "user" and "model" roles
	geminiUserRole = "user"

	// Only the first few stream chunks get logged
	maxLogEventCountGemini = 5
)

// GeminiProvider streams documents through Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider builds a provider around a fresh SDK client. Unlike the
// OpenAI constructor this one can fail, so the factory propagates the error.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name reports which backend this provider talks to
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// StreamDocument generates a document using the Gemini API, forwarding each
// text chunk to onFragment as it arrives
func (p *GeminiProvider) StreamDocument(
	ctx context.Context,
	request *GenerationRequest,
	onFragment FragmentFunc,
) (*StreamResult, error) {
	startTime := time.Now()
	log.Printf("📝 GEMINI STREAMING REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.stream_document")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)
	transaction.SetTag("streaming", "true")

	contents := p.buildContents(request.Prompt.Content)
	config := p.buildGenerateConfig(request)

	// The SDK exposes the stream as a Go 1.23+ range-over-func iterator
	span := transaction.StartChild("gemini.api_stream")

	// fail closes the span and marks the transaction before handing back err
	fail := func(err error) (*StreamResult, error) {
		span.Finish()
		transaction.SetTag("success", "false")
		return nil, err
	}

	result := &StreamResult{}
	eventCount := 0
	var finalUsage *genai.GenerateContentResponseUsageMetadata

	for chunk, err := range p.client.Models.GenerateContentStream(ctx, request.Model, contents, config) {
		if err != nil {
			log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
			sentry.CaptureException(err)
			return fail(&TransportError{Provider: providerNameGemini, Err: err})
		}

		eventCount++

		// Save usage metadata (the final chunk carries the totals)
		if chunk.UsageMetadata != nil {
			finalUsage = chunk.UsageMetadata
		}

		if len(chunk.Candidates) == 0 || chunk.Candidates[0].Content == nil {
			continue
		}
		parts := chunk.Candidates[0].Content.Parts
		if len(parts) == 0 || parts[0].Text == "" {
			continue
		}

		text := parts[0].Text
		if eventCount <= maxLogEventCountGemini {
			log.Printf("📥 Gemini chunk #%d: +%d chars", eventCount, len(text))
		}

		result.Fragments++
		if err := onFragment(text); err != nil {
			// Caller aborted (e.g. client disconnected); stop consuming
			transaction.SetTag("aborted", "true")
			return fail(err)
		}
	}

	span.Finish()

	if finalUsage != nil {
		result.Usage = Usage{
			InputTokens:  int64(finalUsage.PromptTokenCount),
			OutputTokens: int64(finalUsage.CandidatesTokenCount),
			TotalTokens:  int64(finalUsage.TotalTokenCount),
		}
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)
	}

	log.Printf("✅ GEMINI STREAMING COMPLETE: %d events, %d fragments, %v duration",
		eventCount, result.Fragments, time.Since(startTime))

	transaction.SetTag("success", "true")
	return result, nil
}

// buildContents maps prompt content to Gemini content format. A plain text
// prompt becomes a single user turn; a multimodal prompt becomes one user
// turn whose parts hold the intro text, each reference image as inline data
// in submission order, and the document prompt.
func (p *GeminiProvider) buildContents(content models.PromptContent) []*genai.Content {
	switch c := content.(type) {
	case models.TextPrompt:
		return []*genai.Content{{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: string(c)}},
		}}

	case models.MultimodalPrompt:
		parts := make([]*genai.Part, 0, len(c.Images)+2)
		parts = append(parts, &genai.Part{Text: c.Intro})
		for _, img := range c.Images {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: img.MediaType,
					Data:     img.Data,
				},
			})
		}
		parts = append(parts, &genai.Part{Text: c.Prompt})

		return []*genai.Content{{
			Role:  geminiUserRole,
			Parts: parts,
		}}

	default:
		return nil
	}
}

// buildGenerateConfig converts a GenerationRequest into Gemini generation config
func (p *GeminiProvider) buildGenerateConfig(request *GenerationRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if request.Prompt.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: request.Prompt.System}},
		}
	}
	if request.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxOutputTokens)
	}

	return config
}
