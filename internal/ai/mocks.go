package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/debtguard/internal/models"
)

type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, prompt)
	var usage *models.TokenUsage
	if u := args.Get(1); u != nil {
		usage = u.(*models.TokenUsage)
	}
	return args.String(0), usage, args.Error(2)
}

func (m *MockCompletionProvider) GetModelName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCompletionProvider) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

type MockSnippetAssessor struct {
	mock.Mock
}

func (m *MockSnippetAssessor) Assess(ctx context.Context, snippet models.Snippet) (models.Assessment, *models.TokenUsage, error) {
	args := m.Called(ctx, snippet)
	var usage *models.TokenUsage
	if u := args.Get(1); u != nil {
		usage = u.(*models.TokenUsage)
	}
	return args.Get(0).(models.Assessment), usage, args.Error(2)
}
