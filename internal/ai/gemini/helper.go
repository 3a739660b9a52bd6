package gemini

import (
	"strings"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/models"
	"google.golang.org/genai"
)

const (
	defaultTemperature     = float32(0.3)
	defaultMaxOutputTokens = 1024
)

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// GetGenerateConfig returns the generation settings for an assessment call.
// Answers are requested as JSON constrained by AssessmentSchema.
func GetGenerateConfig(cfg ai.ProviderConfig) *genai.GenerateContentConfig {
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	return &genai.GenerateContentConfig{
		Temperature:      float32Ptr(temperature),
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: "application/json",
		ResponseSchema:   AssessmentSchema(),
	}
}

// AssessmentSchema describes the assessment object with the finding types
// as enums.
func AssessmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"snippet_functionality": {Type: genai.TypeString},
			"number_of_lines":       {Type: genai.TypeInteger},
			"securityDebts":         findingListSchema(ai.SecurityDebtTypes),
			"technicalDebts":        findingListSchema(ai.TechnicalDebtTypes),
		},
		Required:         []string{"snippet_functionality", "number_of_lines", "securityDebts", "technicalDebts"},
		PropertyOrdering: []string{"snippet_functionality", "number_of_lines", "securityDebts", "technicalDebts"},
	}
}

func findingListSchema(types []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"type":             {Type: genai.TypeString, Enum: types},
				"symptom":          {Type: genai.TypeString},
				"affected_area":    {Type: genai.TypeString},
				"suggested_repair": {Type: genai.TypeString},
			},
			Required: []string{"type", "symptom", "affected_area", "suggested_repair"},
		},
	}
}

// formatResponse joins the text of every non-thought part of every candidate.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func float32Ptr(f float32) *float32 {
	return &f
}
