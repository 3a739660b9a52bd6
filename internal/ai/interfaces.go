package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/thomas-vilte/debtguard/internal/models"
)

// CompletionProvider sends a prompt to a remote model and returns its raw
// text answer. Implementations classify their failures as MODEL errors.
type CompletionProvider interface {
	// Complete runs one logical request, including transport retries.
	Complete(ctx context.Context, prompt string) (string, *models.TokenUsage, error)

	// GetModelName returns the name of the current model (e.g.: "gemini-2.5-flash")
	GetModelName() string

	// GetProviderName returns the name of the provider (e.g.: "gemini", "azure")
	GetProviderName() string
}

// SnippetAssessor turns a snippet into a validated assessment.
type SnippetAssessor interface {
	Assess(ctx context.Context, snippet models.Snippet) (models.Assessment, *models.TokenUsage, error)
}

// ProviderConfig is everything a provider needs at construction time.
type ProviderConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int

	// MaxRetries bounds transport retries for rate limits, 5xx answers and
	// network failures. RetryBaseDelay is the first backoff step.
	MaxRetries     int
	RetryBaseDelay time.Duration

	// Azure OpenAI deployment identity.
	Endpoint   string
	Deployment string
	APIVersion string

	// BaseURL overrides the provider endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}
