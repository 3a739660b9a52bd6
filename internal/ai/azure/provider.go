package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
)

const (
	defaultAPIVersion      = "2023-07-01-preview"
	defaultTemperature     = float32(0.3)
	defaultMaxOutputTokens = 1024
	requestTimeout         = 120 * time.Second
	maxErrorBody           = 512
)

var _ ai.CompletionProvider = (*AzureProvider)(nil)

// AzureProvider completes prompts with an Azure OpenAI chat deployment.
type AzureProvider struct {
	apiKey      string
	deployment  string
	url         string
	temperature float32
	maxTokens   int
	maxRetries  int
	baseDelay   time.Duration
	client      *http.Client
}

// NewAzureProvider validates the deployment settings and builds the
// chat completions URL.
func NewAzureProvider(cfg ai.ProviderConfig) (*AzureProvider, error) {
	if cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.
			WithContext("provider", string(config.AIAzure))
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	if endpoint == "" {
		return nil, domainErrors.ErrInvalidConfig.
			WithContext("field", "ai.azure.endpoint").
			WithSuggestion("Set the Azure OpenAI endpoint, e.g. https://my-resource.openai.azure.com")
	}

	deployment := cfg.Deployment
	if deployment == "" {
		deployment = cfg.Model
	}
	if deployment == "" {
		return nil, domainErrors.ErrInvalidConfig.
			WithContext("field", "ai.azure.deployment").
			WithSuggestion("Set the Azure OpenAI deployment name")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	return &AzureProvider{
		apiKey:      cfg.APIKey,
		deployment:  deployment,
		url:         completionsURL(endpoint, deployment, apiVersion),
		temperature: temperature,
		maxTokens:   maxTokens,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.RetryBaseDelay,
		client:      client,
	}, nil
}

func completionsURL(endpoint, deployment, apiVersion string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"),
		url.PathEscape(deployment),
		url.QueryEscape(apiVersion))
}

func (a *AzureProvider) Complete(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)

	body := chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, domainErrors.NewAppError(domainErrors.TypeInternal, "marshaling request", err)
	}

	var result chatResponse
	err = ai.RetryWithBackoff(ctx, a.maxRetries, a.baseDelay, func() error {
		result, err = a.send(ctx, payload)
		if err != nil {
			log.Debug("azure openai call failed",
				"error", err,
				"deployment", a.deployment)
		}
		return err
	})
	if err != nil {
		log.Error("azure openai request failed",
			"error", err,
			"deployment", a.deployment)
		return "", nil, err
	}

	usage := &models.TokenUsage{
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		TotalTokens:  result.Usage.TotalTokens,
	}

	if len(result.Choices) == 0 {
		return "", usage, domainErrors.ErrEmptyCompletion.
			WithContext("provider", string(config.AIAzure))
	}

	return result.Choices[0].Message.Content, usage, nil
}

func (a *AzureProvider) send(ctx context.Context, payload []byte) (chatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, domainErrors.NewAppError(domainErrors.TypeInternal, "creating request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", a.apiKey)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return chatResponse{}, ctx.Err()
		}
		return chatResponse{}, ai.Transient(domainErrors.ErrModelUnavailable.WithError(err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return chatResponse{}, ai.Transient(domainErrors.ErrModelUnavailable.WithError(err))
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return chatResponse{}, ai.Transient(domainErrors.ErrModelQuotaExceeded.
			WithError(statusError(httpResp.StatusCode, respBody)))
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return chatResponse{}, domainErrors.ErrModelAuth.
			WithError(statusError(httpResp.StatusCode, respBody))
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return chatResponse{}, ai.Transient(domainErrors.ErrModelUnavailable.
			WithError(statusError(httpResp.StatusCode, respBody)))
	case httpResp.StatusCode != http.StatusOK:
		return chatResponse{}, domainErrors.NewAppError(domainErrors.TypeModel, "azure openai request rejected",
			statusError(httpResp.StatusCode, respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return chatResponse{}, domainErrors.NewAppError(domainErrors.TypeModel, "parsing azure openai response", err)
	}
	return result, nil
}

func statusError(status int, body []byte) error {
	msg := ai.Truncate(strings.TrimSpace(string(body)), maxErrorBody)
	return fmt.Errorf("status %d: %s", status, msg)
}

func (a *AzureProvider) GetModelName() string {
	return a.deployment
}

func (a *AzureProvider) GetProviderName() string {
	return string(config.AIAzure)
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
