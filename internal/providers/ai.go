package providers

import (
	"context"
	"time"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/ai/azure"
	"github.com/thomas-vilte/debtguard/internal/ai/gemini"
	"github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/services/cost"
)

// ProviderConfigFromConfig resolves the API key and the model settings of
// the active provider.
func ProviderConfigFromConfig(cfg *config.Config) (ai.ProviderConfig, error) {
	if cfg.AIConfig.ActiveAI == "" {
		return ai.ProviderConfig{}, domainErrors.ErrProviderNotSupported.
			WithContext("provider", "")
	}
	if !config.IsSupportedAI(cfg.AIConfig.ActiveAI) {
		return ai.ProviderConfig{}, domainErrors.ErrProviderNotSupported.
			WithContext("provider", string(cfg.AIConfig.ActiveAI))
	}

	key, err := cfg.APIKey()
	if err != nil {
		return ai.ProviderConfig{}, domainErrors.ErrAPIKeyMissing.
			WithError(err).
			WithContext("env", config.APIKeyEnv[cfg.AIConfig.ActiveAI]).
			WithSuggestion("Export " + config.APIKeyEnv[cfg.AIConfig.ActiveAI] + " or add it to a .env file")
	}

	return ai.ProviderConfig{
		APIKey:          key,
		Model:           string(cfg.ActiveModel()),
		Temperature:     cfg.AIConfig.Temperature,
		MaxOutputTokens: cfg.AIConfig.MaxOutputTokens,
		MaxRetries:      cfg.AIConfig.MaxTransportRetries,
		RetryBaseDelay:  time.Second,
		Endpoint:        cfg.AIConfig.Azure.Endpoint,
		Deployment:      cfg.AIConfig.Azure.Deployment,
		APIVersion:      cfg.AIConfig.Azure.APIVersion,
	}, nil
}

// NewCompletionProvider creates the CompletionProvider of the configured
// provider, wrapped with cost tracking.
func NewCompletionProvider(ctx context.Context, cfg *config.Config) (ai.CompletionProvider, error) {
	providerCfg, err := ProviderConfigFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var provider ai.CompletionProvider
	switch cfg.AIConfig.ActiveAI {
	case config.AIGemini:
		p, err := gemini.NewGeminiProvider(ctx, providerCfg)
		if err != nil {
			return nil, err
		}
		provider = p
	case config.AIAzure:
		p, err := azure.NewAzureProvider(providerCfg)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, domainErrors.ErrProviderNotSupported.
			WithContext("provider", string(cfg.AIConfig.ActiveAI))
	}

	return ai.NewCostAwareWrapper(provider, cost.NewCalculator()), nil
}

// NewSnippetAssessor creates the assessor used by the scan, backed by the
// configured provider.
func NewSnippetAssessor(ctx context.Context, cfg *config.Config) (ai.SnippetAssessor, error) {
	provider, err := NewCompletionProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ai.NewAssessor(provider, cfg.AIConfig.MaxRepairAttempts), nil
}
