package ai

import (
	"context"
	"time"

	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/services/cost"
)

var _ CompletionProvider = (*CostAwareWrapper)(nil)

// CostAwareWrapper decorates a provider so every returned usage carries the
// model name, the elapsed time and an estimated cost.
type CostAwareWrapper struct {
	provider   CompletionProvider
	calculator *cost.Calculator
}

func NewCostAwareWrapper(provider CompletionProvider, calculator *cost.Calculator) *CostAwareWrapper {
	if calculator == nil {
		calculator = cost.NewCalculator()
	}
	return &CostAwareWrapper{
		provider:   provider,
		calculator: calculator,
	}
}

func (w *CostAwareWrapper) Complete(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	startTime := time.Now()

	text, usage, err := w.provider.Complete(ctx, prompt)
	if usage == nil {
		return text, usage, err
	}

	modelName := w.provider.GetModelName()
	usage.Model = modelName
	usage.CostUSD = w.calculator.EstimateCost(w.provider.GetProviderName(), modelName, usage.InputTokens, usage.OutputTokens)
	usage.DurationMs = time.Since(startTime).Milliseconds()

	logger.Debug(ctx, "model call finished",
		"model", modelName,
		"tokens", usage.TotalTokens,
		"cost_usd", usage.CostUSD,
		"duration", time.Duration(usage.DurationMs)*time.Millisecond)

	return text, usage, err
}

func (w *CostAwareWrapper) GetModelName() string {
	return w.provider.GetModelName()
}

func (w *CostAwareWrapper) GetProviderName() string {
	return w.provider.GetProviderName()
}
