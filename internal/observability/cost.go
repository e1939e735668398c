package observability

import (
	"strconv"

	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
)

const tokensPerKilo = 1000.0

// fallbackPricingModel prices generations whose model we have no entry for
const fallbackPricingModel = "gpt-5-mini"

// pricing is USD per 1K tokens
type pricing struct {
	input  float64
	output float64
}

var modelPricing = map[string]pricing{
	"gpt-5":            {input: 0.00125, output: 0.01},
	"gpt-5-mini":       {input: 0.00025, output: 0.002},
	"gpt-5-nano":       {input: 0.00005, output: 0.0004},
	"gemini-2.5-flash": {input: 0.0003, output: 0.0025},
	"gemini-2.5-pro":   {input: 0.00125, output: 0.01},
}

// CalculateCost estimates what one generation cost in USD
func CalculateCost(model string, usage llm.Usage) float64 {
	p, ok := modelPricing[model]
	if !ok {
		p = modelPricing[fallbackPricingModel]
	}
	return p.input*float64(usage.InputTokens)/tokensPerKilo +
		p.output*float64(usage.OutputTokens)/tokensPerKilo
}

// FormatCost renders a cost for log lines, e.g. "$0.004250"
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', 6, 64)
}
