package llm

import "strings"

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing. Embedding models only
// bill input tokens.
var priceTable = map[string]modelPricing{
	"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	"gpt-4o":        {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":   {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	"text-embedding-3-small": {InputPerMillion: 0.02},
	"text-embedding-3-large": {InputPerMillion: 0.13},
	"text-embedding-ada-002": {InputPerMillion: 0.10},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Dated snapshots such as "gpt-3.5-turbo-0125" are priced as their base model.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := lookupPricing(model)
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

func lookupPricing(model string) (modelPricing, bool) {
	if p, ok := priceTable[model]; ok {
		return p, true
	}
	var (
		best    modelPricing
		bestLen int
	)
	for name, p := range priceTable {
		if strings.HasPrefix(model, name+"-") && len(name) > bestLen {
			best, bestLen = p, len(name)
		}
	}
	return best, bestLen > 0
}
