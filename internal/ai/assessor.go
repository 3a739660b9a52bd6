package ai

import (
	"context"
	"strings"

	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
)

const DefaultMaxRepairAttempts = 3

var _ SnippetAssessor = (*Assessor)(nil)

// Assessor asks the model about one snippet and insists on a schema
// conforming answer, re-asking at most maxRepairs times.
type Assessor struct {
	provider   CompletionProvider
	maxRepairs int
}

func NewAssessor(provider CompletionProvider, maxRepairAttempts int) *Assessor {
	if maxRepairAttempts < 0 {
		maxRepairAttempts = DefaultMaxRepairAttempts
	}
	return &Assessor{
		provider:   provider,
		maxRepairs: maxRepairAttempts,
	}
}

// Assess returns the validated assessment of snippet together with the
// tokens spent on it, repairs included. A provider failure is returned
// untouched; an answer that never conforms yields ErrSchemaValidation.
func (a *Assessor) Assess(ctx context.Context, snippet models.Snippet) (models.Assessment, *models.TokenUsage, error) {
	log := logger.FromContext(ctx).With("commit", snippet.CommitHash, "path", snippet.Path)

	prompt, err := BuildAssessmentPrompt(snippet)
	if err != nil {
		return models.Assessment{}, nil, appErrors.NewAppError(appErrors.TypeInternal, "failed to render prompt", err)
	}

	usage := &models.TokenUsage{Model: a.provider.GetModelName()}
	request := prompt

	for attempt := 0; ; attempt++ {
		completion, callUsage, err := a.provider.Complete(ctx, request)
		usage.Add(callUsage)
		if err != nil {
			return models.Assessment{}, usage, err
		}

		assessment, violations := ParseAssessment(completion)
		if len(violations) == 0 {
			if attempt > 0 {
				log.Info("model answer repaired", "repairs", attempt)
			}
			return assessment, usage, nil
		}

		log.Warn("model answer does not match the schema",
			"attempt", attempt+1,
			"violations", strings.Join(violations, "; "))

		if attempt >= a.maxRepairs {
			return models.Assessment{}, usage, appErrors.ErrSchemaValidation.
				WithContext("path", snippet.Path).
				WithContext("attempts", attempt+1).
				WithContext("violations", violations)
		}

		request, err = BuildRepairPrompt(prompt, completion, violations)
		if err != nil {
			return models.Assessment{}, usage, appErrors.NewAppError(appErrors.TypeInternal, "failed to render prompt", err)
		}
	}
}
