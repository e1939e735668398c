package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/pkg/embedded"
)

// Wire names of the required inputs, reported back in validation errors.
const (
	FieldProductName      = "product_name"
	FieldProblemStatement = "problem_statement"
	FieldTargetUsers      = "target_users"
	FieldProposedSolution = "proposed_solution"
)

const (
	untitledProduct  = "Untitled Feature"
	timelineFallback = "To be determined"
	contextFallback  = "None provided"
)

const directive = "Generate the complete PRD now. Replace every placeholder with specific, realistic, actionable content derived from the product inputs above."

// ValidationError reports required inputs that were empty after trimming.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Builder assembles generation requests from product inputs.
type Builder struct {
	catalog *Catalog
	now     func() time.Time
}

// NewBuilder creates a prompt builder backed by the template catalog.
func NewBuilder() *Builder {
	return &Builder{
		catalog: NewCatalog(),
		now:     time.Now,
	}
}

// SystemPrompt returns the static product-manager persona attached to every
// generation request.
func SystemPrompt() string {
	return strings.TrimSpace(string(embedded.SystemPromptTxt))
}

// Build validates the inputs and assembles the complete generation request
// for the chosen format. With no images the content is a single text unit;
// with images it is an intro block, the images in submission order, and the
// prompt text as the final segment.
func (b *Builder) Build(inputs models.DocumentInputs, format models.DocumentFormat, images []models.ReferenceImage) (*models.PromptRequest, error) {
	if missing := missingRequiredFields(inputs); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	prompt := b.buildPrompt(inputs, format)

	request := &models.PromptRequest{System: SystemPrompt()}
	if len(images) == 0 {
		request.Content = models.TextPrompt(prompt)
		return request, nil
	}

	request.Content = models.MultimodalPrompt{
		Intro:  imageIntro(len(images)),
		Images: images,
		Prompt: prompt,
	}
	return request, nil
}

func missingRequiredFields(inputs models.DocumentInputs) []string {
	required := []struct {
		name  string
		value string
	}{
		{FieldProductName, inputs.ProductName},
		{FieldProblemStatement, inputs.ProblemStatement},
		{FieldTargetUsers, inputs.TargetUsers},
		{FieldProposedSolution, inputs.ProposedSolution},
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// buildPrompt composes the product inputs block, the resolved skeleton and
// the closing directive into the final prompt text.
func (b *Builder) buildPrompt(inputs models.DocumentInputs, format models.DocumentFormat) string {
	productName := strings.TrimSpace(inputs.ProductName)
	if productName == "" {
		productName = untitledProduct
	}

	skeleton := b.catalog.SkeletonFor(format, b.now())
	skeleton = strings.ReplaceAll(skeleton, "{product_name}", productName)

	sections := []string{
		b.productInputsSection(inputs, productName),
		"---",
		skeleton,
		directive,
	}
	return strings.Join(sections, "\n\n")
}

func (b *Builder) productInputsSection(inputs models.DocumentInputs, productName string) string {
	fields := []string{
		"## Product Inputs",
		fmt.Sprintf("**Product / Feature Name**: %s", productName),
		fmt.Sprintf("**Problem Statement**:\n%s", strings.TrimSpace(inputs.ProblemStatement)),
		fmt.Sprintf("**Target Users**:\n%s", strings.TrimSpace(inputs.TargetUsers)),
		fmt.Sprintf("**Proposed Solution**:\n%s", strings.TrimSpace(inputs.ProposedSolution)),
		fmt.Sprintf("**Business Goals & Expected Impact**:\n%s", strings.TrimSpace(inputs.BusinessGoals)),
		fmt.Sprintf("**Timeline**:\n%s", orFallback(inputs.Timeline, timelineFallback)),
		fmt.Sprintf("**Additional Context**:\n%s", orFallback(inputs.AdditionalContext, contextFallback)),
	}
	return strings.Join(fields, "\n\n")
}

func orFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

// imageIntro tells the model how many visual references are attached and
// how to work them into the document.
func imageIntro(n int) string {
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return fmt.Sprintf(
		"I'm providing %d visual reference%s (mockup%s / wireframe%s) to inform this PRD.\n\n"+
			"Please:\n"+
			"1. Carefully analyze each visual and identify key screens, user flows, and UI patterns shown.\n"+
			"2. Reference specific observations from the visuals in the relevant PRD sections (e.g. Design & UX, User Stories, Functional Requirements).\n"+
			"3. Use the visuals to make the acceptance criteria and functional requirements more precise and implementation-ready.\n\n",
		n, plural, plural, plural)
}
