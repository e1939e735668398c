package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
	"github.com/Conceptual-Machines/prdgen-api/internal/metrics"
	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/internal/prompt"
)

// stubProvider implements llm.Provider for service tests
type stubProvider struct {
	name      string
	fragments []string
	result    *llm.StreamResult
	err       error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) StreamDocument(
	_ context.Context, _ *llm.GenerationRequest, onFragment llm.FragmentFunc,
) (*llm.StreamResult, error) {
	for _, text := range p.fragments {
		if err := onFragment(text); err != nil {
			return nil, err
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &llm.StreamResult{Fragments: len(p.fragments)}, nil
}

// stubResolver hands out a fixed provider and records the requested model
type stubResolver struct {
	provider llm.Provider
	err      error
	gotModel string
}

func (r *stubResolver) GetProvider(_ context.Context, model string) (llm.Provider, error) {
	r.gotModel = model
	if r.err != nil {
		return nil, r.err
	}
	return r.provider, nil
}

func testService(resolver providerResolver) *GenerationService {
	cfg := &config.Config{Model: config.DefaultModel}
	cw, _ := metrics.NewClient(context.Background(), "test")
	return NewGenerationService(cfg, resolver, cw)
}

func validRequest() *models.GenerateDocumentRequest {
	return &models.GenerateDocumentRequest{
		DocumentInputs: models.DocumentInputs{
			ProductName:      "Smart Notification Center",
			ProblemStatement: "Users drown in notifications.",
			TargetUsers:      "Mobile power users",
			ProposedSolution: "A unified digest hub.",
		},
		FormatType: "standard",
	}
}

func TestPrepareUsesDefaultModel(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "openai"}}
	svc := testService(resolver)

	prepared, err := svc.Prepare(context.Background(), validRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultModel, resolver.gotModel)
	assert.Equal(t, config.DefaultModel, prepared.Request.Model)
	assert.Equal(t, int64(4096), prepared.Request.MaxOutputTokens)
	assert.Equal(t, models.FormatStandard, prepared.Format)
}

func TestPrepareModelOverride(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "gemini"}}
	svc := testService(resolver)

	req := validRequest()
	req.Model = "gemini-2.5-flash"
	prepared, err := svc.Prepare(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", resolver.gotModel)
	assert.Equal(t, "gemini-2.5-flash", prepared.Request.Model)
}

func TestPrepareEmptyFormatDefaultsToStandard(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "openai"}}
	svc := testService(resolver)

	req := validRequest()
	req.FormatType = ""
	prepared, err := svc.Prepare(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FormatStandard, prepared.Format)
}

func TestPrepareUnknownFormatFallsBackToStandard(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "openai"}}
	svc := testService(resolver)

	req := validRequest()
	req.FormatType = "fancy_deck"
	prepared, err := svc.Prepare(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FormatStandard, prepared.Format)
}

func TestPrepareConfigurationErrorBeforeValidation(t *testing.T) {
	configErr := &llm.ConfigurationError{
		Provider:  "openai",
		ConfigKey: "openai_api_key",
		EnvVar:    "OPENAI_API_KEY",
	}
	resolver := &stubResolver{err: configErr}
	svc := testService(resolver)

	// Inputs are empty AND the key is missing: the key problem is reported
	req := &models.GenerateDocumentRequest{}
	_, err := svc.Prepare(context.Background(), req, nil)
	require.Error(t, err)

	var gotConfig *llm.ConfigurationError
	assert.ErrorAs(t, err, &gotConfig)
	var gotValidation *prompt.ValidationError
	assert.False(t, errors.As(err, &gotValidation))
}

func TestPrepareValidationError(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "openai"}}
	svc := testService(resolver)

	req := validRequest()
	req.ProblemStatement = "   "
	_, err := svc.Prepare(context.Background(), req, nil)
	require.Error(t, err)

	var validationErr *prompt.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"problem_statement"}, validationErr.Missing)
}

func TestPrepareMultimodalPrompt(t *testing.T) {
	resolver := &stubResolver{provider: &stubProvider{name: "openai"}}
	svc := testService(resolver)

	images := []models.ReferenceImage{{MediaType: "image/png", Data: []byte{1, 2, 3}}}
	prepared, err := svc.Prepare(context.Background(), validRequest(), images)
	require.NoError(t, err)

	mm, ok := prepared.Request.Prompt.Content.(models.MultimodalPrompt)
	require.True(t, ok)
	assert.Len(t, mm.Images, 1)
}

func TestStreamRelaysFragments(t *testing.T) {
	provider := &stubProvider{
		name:      "openai",
		fragments: []string{"# Doc", " body"},
		result: &llm.StreamResult{
			Fragments: 2,
			Usage:     llm.Usage{InputTokens: 5, OutputTokens: 7, TotalTokens: 12},
		},
	}
	resolver := &stubResolver{provider: provider}
	svc := testService(resolver)

	prepared, err := svc.Prepare(context.Background(), validRequest(), nil)
	require.NoError(t, err)

	var events []Event
	err = svc.Stream(context.Background(), prepared, collectSink(&events))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, EventFragment, events[0].Type)
	assert.Equal(t, "# Doc", events[0].Text)
	assert.Equal(t, EventFragment, events[1].Type)
	assert.Equal(t, " body", events[1].Text)
	assert.Equal(t, EventDone, events[2].Type)
}

func TestStreamProviderFailure(t *testing.T) {
	provider := &stubProvider{
		name:      "openai",
		fragments: []string{"partial"},
		err:       &llm.TransportError{Provider: "openai", Err: errors.New("boom")},
	}
	resolver := &stubResolver{provider: provider}
	svc := testService(resolver)

	prepared, err := svc.Prepare(context.Background(), validRequest(), nil)
	require.NoError(t, err)

	var events []Event
	err = svc.Stream(context.Background(), prepared, collectSink(&events))
	require.Error(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, EventFragment, events[0].Type)
	assert.Equal(t, EventError, events[1].Type)
	assert.Contains(t, events[1].Message, "boom")
}
