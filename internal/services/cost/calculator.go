package cost

import (
	"fmt"
	"sort"
	"strings"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

type ProviderPricing map[string]map[string]PricingTable

// https://ai.google.dev/gemini-api/docs/pricing
// https://azure.microsoft.com/pricing/details/cognitive-services/openai-service/
var defaultPricing = ProviderPricing{
	"gemini": {
		"gemini-2.5-pro":        {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
		"gemini-2.5-flash":      {InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50},
		"gemini-2.5-flash-lite": {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
		"gemini-2.0-flash":      {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
	},
	"azure": {
		"gpt-4o":       {InputPricePerMillion: 2.50, OutputPricePerMillion: 10.00},
		"gpt-4o-mini":  {InputPricePerMillion: 0.15, OutputPricePerMillion: 0.60},
		"gpt-4":        {InputPricePerMillion: 30.00, OutputPricePerMillion: 60.00},
		"gpt-35-turbo": {InputPricePerMillion: 0.50, OutputPricePerMillion: 1.50},
		"gpt-4.1":      {InputPricePerMillion: 2.00, OutputPricePerMillion: 8.00},
		"gpt-4.1-mini": {InputPricePerMillion: 0.40, OutputPricePerMillion: 1.60},
		"gpt-4-turbo":  {InputPricePerMillion: 10.00, OutputPricePerMillion: 30.00},
	},
}

// Calculator estimates the USD cost of a model call from its token usage.
type Calculator struct {
	pricing ProviderPricing
}

func NewCalculator() *Calculator {
	pricing := make(ProviderPricing, len(defaultPricing))
	for provider, models := range defaultPricing {
		pricing[provider] = make(map[string]PricingTable, len(models))
		for model, table := range models {
			pricing[provider][model] = table
		}
	}
	return &Calculator{pricing: pricing}
}

// EstimateCost calculates the estimated cost based on provider, model, and tokens.
// Unknown models fall back to the longest known model name they contain, so
// dated releases such as gemini-2.5-flash-001 are still priced.
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return 0
	}

	modelPricing, exists := providerPricing[model]
	if !exists {
		names := make([]string, 0, len(providerPricing))
		for name := range providerPricing {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

		for _, name := range names {
			if strings.Contains(model, name) {
				modelPricing, exists = providerPricing[name], true
				break
			}
		}
		if !exists {
			return 0
		}
	}

	inputCost := (float64(inputTokens) / 1_000_000) * modelPricing.InputPricePerMillion
	outputCost := (float64(outputTokens) / 1_000_000) * modelPricing.OutputPricePerMillion

	return inputCost + outputCost
}

// GetPricing returns the pricing table for a provider and model
func (c *Calculator) GetPricing(provider, model string) (PricingTable, error) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, fmt.Errorf("provider %s not found", provider)
	}

	modelPricing, exists := providerPricing[model]
	if !exists {
		return PricingTable{}, fmt.Errorf("model %s not found for provider %s", model, provider)
	}

	return modelPricing, nil
}

// AddPricing registers or replaces the price of a model on this calculator.
func (c *Calculator) AddPricing(provider, model string, table PricingTable) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	if _, exists := c.pricing[provider]; !exists {
		c.pricing[provider] = make(map[string]PricingTable)
	}
	c.pricing[provider][model] = table
}
