package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
)

const (
	providerNameOpenAI = "openai"

	// Only the first few stream events get logged
	maxLogEventCountOpenAI = 5
)

// OpenAIProvider streams documents through OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a provider around a fresh SDK client
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name reports which backend this provider talks to
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// StreamDocument generates a document using OpenAI's Responses API, forwarding
// each text delta to onFragment as it arrives
func (p *OpenAIProvider) StreamDocument(
	ctx context.Context,
	request *GenerationRequest,
	onFragment FragmentFunc,
) (*StreamResult, error) {
	startTime := time.Now()
	log.Printf("📝 OPENAI STREAMING REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.stream_document")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("streaming", "true")

	span := transaction.StartChild("openai.api_stream")
	stream := p.client.Responses.NewStreaming(ctx, p.buildRequestParams(request))
	defer stream.Close()

	// fail closes the span and marks the transaction before handing back err
	fail := func(err error) (*StreamResult, error) {
		span.Finish()
		transaction.SetTag("success", "false")
		return nil, err
	}

	result := &StreamResult{}
	eventCount := 0
	var finalResponse *responses.Response

	for stream.Next() {
		event := stream.Current()
		eventCount++
		if eventCount <= maxLogEventCountOpenAI {
			log.Printf("📥 OpenAI event #%d (%s)", eventCount, event.Type)
		}

		switch event.Type {
		case "response.output_text.delta":
			delta := event.AsResponseOutputTextDelta().Delta
			if delta == "" {
				continue
			}
			result.Fragments++
			if err := onFragment(delta); err != nil {
				// Caller aborted (e.g. client disconnected); stop consuming
				transaction.SetTag("aborted", "true")
				return fail(err)
			}

		case "response.completed":
			completed := event.AsResponseCompleted()
			finalResponse = &completed.Response

		case "response.failed":
			failed := event.AsResponseFailed()
			log.Printf("❌ Stream failed: %s", failed.Response.Error.Message)
			return fail(&TransportError{
				Provider: providerNameOpenAI,
				Err:      fmt.Errorf("response failed: %s", failed.Response.Error.Message),
			})

		case "error":
			errEvent := event.AsError()
			log.Printf("❌ Stream error event: %s", errEvent.Message)
			return fail(&TransportError{
				Provider: providerNameOpenAI,
				Err:      errors.New(errEvent.Message),
			})
		}
	}
	span.Finish()

	if err := stream.Err(); err != nil {
		log.Printf("❌ Stream error: %v", err)
		sentry.CaptureException(err)
		transaction.SetTag("success", "false")
		return nil, &TransportError{Provider: providerNameOpenAI, Err: err}
	}

	// The completed event carries the token totals
	if finalResponse != nil {
		result.Usage = Usage{
			InputTokens:  finalResponse.Usage.InputTokens,
			OutputTokens: finalResponse.Usage.OutputTokens,
			TotalTokens:  finalResponse.Usage.TotalTokens,
		}
	}

	log.Printf("✅ OPENAI STREAMING COMPLETE: %d events, %d fragments, %v duration",
		eventCount, result.Fragments, time.Since(startTime))

	transaction.SetTag("success", "true")
	return result, nil
}

// buildRequestParams maps a GenerationRequest onto the Responses API shape
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: p.buildInputItems(request.Prompt.Content),
		},
	}

	if request.Prompt.System != "" {
		params.Instructions = openai.String(request.Prompt.System)
	}
	if request.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(request.MaxOutputTokens)
	}

	return params
}

// buildInputItems maps prompt content to Responses API input items. A plain
// text prompt becomes a single user message; a multimodal prompt becomes one
// user message whose content holds the intro text, each reference image in
// submission order, and the document prompt.
func (p *OpenAIProvider) buildInputItems(content models.PromptContent) responses.ResponseInputParam {
	switch c := content.(type) {
	case models.TextPrompt:
		return responses.ResponseInputParam{
			responses.ResponseInputItemParamOfMessage(string(c), responses.EasyInputMessageRoleUser),
		}

	case models.MultimodalPrompt:
		parts := make(responses.ResponseInputMessageContentListParam, 0, len(c.Images)+2)
		parts = append(parts, responses.ResponseInputContentUnionParam{
			OfInputText: &responses.ResponseInputTextParam{Text: c.Intro},
		})
		for _, img := range c.Images {
			parts = append(parts, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					ImageURL: openai.String(imageDataURL(img)),
					Detail:   responses.ResponseInputImageDetailAuto,
				},
			})
		}
		parts = append(parts, responses.ResponseInputContentUnionParam{
			OfInputText: &responses.ResponseInputTextParam{Text: c.Prompt},
		})

		return responses.ResponseInputParam{{
			OfMessage: &responses.EasyInputMessageParam{
				Role: responses.EasyInputMessageRoleUser,
				Content: responses.EasyInputMessageContentUnionParam{
					OfInputItemContentList: parts,
				},
			},
		}}

	default:
		return responses.ResponseInputParam{}
	}
}

// imageDataURL encodes a reference image as a base64 data URL
func imageDataURL(img models.ReferenceImage) string {
	return "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
