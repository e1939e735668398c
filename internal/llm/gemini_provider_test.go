package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
)

func TestGeminiProvider_Name(t *testing.T) {
	// We can't create a real client without an API key
	// So just test the name method with a nil client
	provider := &GeminiProvider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_BuildContentsText(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	contents := provider.buildContents(models.TextPrompt("test content"))
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "test content", contents[0].Parts[0].Text)
}

func TestGeminiProvider_BuildContentsMultimodal(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	pngData := []byte{0x89, 0x50, 0x4e, 0x47}
	jpegData := []byte{0xff, 0xd8, 0xff, 0xe0}
	content := models.MultimodalPrompt{
		Intro: "Here are 2 mockups.",
		Images: []models.ReferenceImage{
			{MediaType: "image/png", Data: pngData},
			{MediaType: "image/jpeg", Data: jpegData},
		},
		Prompt: "Generate the document.",
	}

	contents := provider.buildContents(content)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)

	parts := contents[0].Parts
	require.Len(t, parts, 4)

	// Intro text, images as inline data in submission order, then the prompt
	assert.Equal(t, "Here are 2 mockups.", parts[0].Text)

	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, pngData, parts[1].InlineData.Data)

	require.NotNil(t, parts[2].InlineData)
	assert.Equal(t, "image/jpeg", parts[2].InlineData.MIMEType)
	assert.Equal(t, jpegData, parts[2].InlineData.Data)

	assert.Equal(t, "Generate the document.", parts[3].Text)
}

func TestGeminiProvider_BuildGenerateConfig(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	request := &GenerationRequest{
		Model:           "gemini-2.5-flash",
		MaxOutputTokens: 4096,
		Prompt: models.PromptRequest{
			System:  "test system prompt",
			Content: models.TextPrompt("test"),
		},
	}

	config := provider.buildGenerateConfig(request)
	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, "test system prompt", config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(4096), config.MaxOutputTokens)
}

func TestGeminiProvider_BuildGenerateConfigDefaults(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	request := &GenerationRequest{
		Model: "gemini-2.5-flash",
		Prompt: models.PromptRequest{
			Content: models.TextPrompt("test"),
		},
	}

	config := provider.buildGenerateConfig(request)
	assert.Nil(t, config.SystemInstruction)
	assert.Zero(t, config.MaxOutputTokens)
}

func TestNewGeminiProvider_InvalidKey(t *testing.T) {
	ctx := context.Background()
	provider, err := NewGeminiProvider(ctx, "invalid-key")

	// This might succeed (client creation) or fail depending on SDK validation
	// The important thing is we can create the provider object
	if err != nil {
		assert.Error(t, err)
	} else {
		assert.NotNil(t, provider)
		assert.Equal(t, "gemini", provider.Name())
	}
}
