package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
	"google.golang.org/genai"
)

var _ ai.CompletionProvider = (*GeminiProvider)(nil)

type generateFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiProvider completes prompts with the Gemini API.
type GeminiProvider struct {
	Client     *genai.Client
	model      string
	cfg        ai.ProviderConfig
	generateFn generateFunc
}

// NewGeminiProvider creates a Gemini backed provider from cfg.
func NewGeminiProvider(ctx context.Context, cfg ai.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.
			WithContext("provider", string(config.AIGemini))
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		if isAuthError(err) {
			return nil, domainErrors.ErrModelAuth.WithError(err)
		}
		return nil, domainErrors.NewAppError(domainErrors.TypeModel, "error creating AI client", err)
	}

	p := &GeminiProvider{
		Client: client,
		model:  cfg.Model,
		cfg:    cfg,
	}
	p.generateFn = p.defaultGenerate
	return p, nil
}

func (g *GeminiProvider) defaultGenerate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.Client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
}

// Complete sends prompt to the configured model, retrying transient
// failures with exponential backoff.
func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)
	genConfig := GetGenerateConfig(g.cfg)

	var resp *genai.GenerateContentResponse
	err := ai.RetryWithBackoff(ctx, g.cfg.MaxRetries, g.cfg.RetryBaseDelay, func() error {
		var callErr error
		resp, callErr = g.generateFn(ctx, g.model, prompt, genConfig)
		if callErr != nil {
			log.Debug("gemini API call failed",
				"error", callErr,
				"model", g.model)
			return classifyError(ctx, callErr)
		}
		return nil
	})
	if err != nil {
		log.Error("gemini request failed",
			"error", err,
			"model", g.model)
		return "", nil, err
	}

	usage := extractUsage(resp)
	if resp == nil || len(resp.Candidates) == 0 {
		return "", usage, domainErrors.ErrEmptyCompletion.
			WithContext("provider", string(config.AIGemini))
	}

	text := formatResponse(resp)
	log.Debug("gemini response received",
		"model", g.model,
		"length", len(text))

	return text, usage, nil
}

func (g *GeminiProvider) GetModelName() string {
	return g.model
}

func (g *GeminiProvider) GetProviderName() string {
	return string(config.AIGemini)
}

// classifyError maps a Gemini failure onto the MODEL error sentinels.
// Rate limits and server side failures are wrapped as transient.
func classifyError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	if code, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return ai.Transient(domainErrors.ErrModelQuotaExceeded.WithError(err))
		case isAuthError(err):
			return domainErrors.ErrModelAuth.WithError(err)
		case code >= http.StatusInternalServerError:
			return ai.Transient(domainErrors.ErrModelUnavailable.WithError(err))
		}
		return domainErrors.NewAppError(domainErrors.TypeModel, "gemini request failed", err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") ||
		strings.Contains(errMsg, "resource_exhausted") ||
		strings.Contains(errMsg, "429"):
		return ai.Transient(domainErrors.ErrModelQuotaExceeded.WithError(err))

	case isAuthError(err):
		return domainErrors.ErrModelAuth.WithError(err)

	case strings.Contains(errMsg, "unavailable") ||
		strings.Contains(errMsg, "internal") ||
		strings.Contains(errMsg, "deadline") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "500") ||
		strings.Contains(errMsg, "502") ||
		strings.Contains(errMsg, "503") ||
		strings.Contains(errMsg, "504"):
		return ai.Transient(domainErrors.ErrModelUnavailable.WithError(err))
	}

	return domainErrors.NewAppError(domainErrors.TypeModel, "gemini request failed", err)
}

// apiErrorCode returns the HTTP status carried by a genai API error.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

// isAuthError reports a rejected credential. Gemini answers an unknown key
// with 400 INVALID_ARGUMENT, so a 400 only counts when it names the key.
func isAuthError(err error) bool {
	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return true
		case http.StatusBadRequest:
			return strings.Contains(strings.ToLower(err.Error()), "api key")
		}
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "unauthenticated") ||
		strings.Contains(errMsg, "permission denied") ||
		strings.Contains(errMsg, "api key")
}
