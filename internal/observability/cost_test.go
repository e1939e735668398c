package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
)

func TestCalculateCost(t *testing.T) {
	usage := llm.Usage{InputTokens: 1000, OutputTokens: 2000, TotalTokens: 3000}

	// gpt-5-mini: 1000 * 0.00025/1K + 2000 * 0.002/1K = 0.00025 + 0.004
	cost := CalculateCost("gpt-5-mini", usage)
	assert.InDelta(t, 0.00425, cost, 0.000001)
}

func TestCalculateCostGemini(t *testing.T) {
	usage := llm.Usage{InputTokens: 10000, OutputTokens: 1000, TotalTokens: 11000}

	// gemini-2.5-flash: 10000 * 0.0003/1K + 1000 * 0.0025/1K = 0.003 + 0.0025
	cost := CalculateCost("gemini-2.5-flash", usage)
	assert.InDelta(t, 0.0055, cost, 0.000001)
}

func TestCalculateCostUnknownModelFallsBack(t *testing.T) {
	usage := llm.Usage{InputTokens: 1000, OutputTokens: 1000, TotalTokens: 2000}

	unknown := CalculateCost("some-future-model", usage)
	fallback := CalculateCost("gpt-5-mini", usage)
	assert.Equal(t, fallback, unknown)
}

func TestCalculateCostZeroUsage(t *testing.T) {
	cost := CalculateCost("gpt-5", llm.Usage{})
	assert.Zero(t, cost)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.004250", FormatCost(0.00425))
	assert.Equal(t, "$0.000000", FormatCost(0))
}
