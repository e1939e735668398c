package models

import (
	"encoding/base64"
	"fmt"
)

// DocumentFormat selects which PRD skeleton a generation uses.
type DocumentFormat string

const (
	FormatStandard     DocumentFormat = "standard"
	FormatOnePage      DocumentFormat = "one_page"
	FormatAgileEpic    DocumentFormat = "agile_epic"
	FormatFeatureBrief DocumentFormat = "feature_brief"
)

// DocumentInputs holds the product facts a PRD is generated from.
// The first four fields are required; the rest fall back to fixed text
// when left empty.
type DocumentInputs struct {
	ProductName       string `json:"product_name"`
	ProblemStatement  string `json:"problem_statement"`
	TargetUsers       string `json:"target_users"`
	ProposedSolution  string `json:"proposed_solution"`
	BusinessGoals     string `json:"business_goals"`
	Timeline          string `json:"timeline"`
	AdditionalContext string `json:"additional_context"`
}

// ReferenceImage is one visual attachment (mockup, wireframe) submitted
// alongside the product inputs. Order of submission is preserved all the
// way to the model request.
type ReferenceImage struct {
	MediaType string
	Data      []byte
}

// PromptRequest is a fully assembled generation request: the static system
// persona plus a single user turn. Immutable once built.
type PromptRequest struct {
	System  string
	Content PromptContent
}

// PromptContent is the user-turn payload. It is one of TextPrompt or
// MultimodalPrompt; providers handle both shapes exhaustively.
type PromptContent interface {
	promptContent()
}

// TextPrompt is a plain text user turn with no attachments.
type TextPrompt string

func (TextPrompt) promptContent() {}

// MultimodalPrompt carries reference images between an instruction intro
// and the final prompt text, in submission order.
type MultimodalPrompt struct {
	Intro  string
	Images []ReferenceImage
	Prompt string
}

func (MultimodalPrompt) promptContent() {}

// GenerateDocumentRequest is the JSON body accepted by the generate endpoint.
type GenerateDocumentRequest struct {
	DocumentInputs
	FormatType string         `json:"format_type"`
	Model      string         `json:"model"`
	Images     []ImagePayload `json:"images"`
}

// ImagePayload is the wire form of a reference image: base64 data plus an
// optional media type (defaults to image/png).
type ImagePayload struct {
	Data      string `json:"data"`
	MediaType string `json:"media_type"`
}

const defaultImageMediaType = "image/png"

// DecodeImages converts wire image payloads into raw reference images,
// preserving submission order.
func DecodeImages(payloads []ImagePayload) ([]ReferenceImage, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	images := make([]ReferenceImage, 0, len(payloads))
	for i, p := range payloads {
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		mediaType := p.MediaType
		if mediaType == "" {
			mediaType = defaultImageMediaType
		}
		images = append(images, ReferenceImage{MediaType: mediaType, Data: data})
	}
	return images, nil
}

// ShareDocumentRequest is the JSON body accepted by the share endpoint.
type ShareDocumentRequest struct {
	To          string `json:"to"`
	ProductName string `json:"product_name"`
	Document    string `json:"document"`
}
