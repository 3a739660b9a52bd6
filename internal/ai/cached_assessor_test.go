package ai

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/debtguard/internal/cache"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/models"
)

func newTestCache(t *testing.T) *cache.Cache {
	c, err := cache.NewCache(filepath.Join(t.TempDir(), "cache"), time.Hour)
	require.NoError(t, err)
	return c
}

func TestCachedAssessor(t *testing.T) {
	snippet := testSnippet()
	assessment := models.Assessment{
		SnippetFunctionality: "adds numbers",
		NumberOfLines:        3,
		SecurityDebts:        []models.DebtFinding{},
		TechnicalDebts:       []models.DebtFinding{{Type: "Magic Numbers", Symptom: "42", AffectedArea: "add", SuggestedRepair: "name it"}},
	}

	t.Run("should call the model once per snippet", func(t *testing.T) {
		next := new(MockSnippetAssessor)
		next.On("Assess", mock.Anything, snippet).
			Return(assessment, &models.TokenUsage{TotalTokens: 10}, nil).Once()

		assessor := NewCachedAssessor(next, newTestCache(t), "gemini-2.5-flash")

		first, usage, err := assessor.Assess(context.Background(), snippet)
		require.NoError(t, err)
		assert.Equal(t, 10, usage.TotalTokens)

		second, usage, err := assessor.Assess(context.Background(), snippet)
		require.NoError(t, err)
		assert.Nil(t, usage)
		assert.Equal(t, first, second)

		next.AssertExpectations(t)
	})

	t.Run("should not share answers between models", func(t *testing.T) {
		c := newTestCache(t)
		next := new(MockSnippetAssessor)
		next.On("Assess", mock.Anything, snippet).
			Return(assessment, &models.TokenUsage{}, nil).Twice()

		_, _, err := NewCachedAssessor(next, c, "model-a").Assess(context.Background(), snippet)
		require.NoError(t, err)
		_, _, err = NewCachedAssessor(next, c, "model-b").Assess(context.Background(), snippet)
		require.NoError(t, err)

		next.AssertExpectations(t)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		next := new(MockSnippetAssessor)
		next.On("Assess", mock.Anything, snippet).
			Return(models.Assessment{}, (*models.TokenUsage)(nil), domainErrors.ErrSchemaValidation).Once()
		next.On("Assess", mock.Anything, snippet).
			Return(assessment, &models.TokenUsage{}, nil).Once()

		assessor := NewCachedAssessor(next, newTestCache(t), "m")

		_, _, err := assessor.Assess(context.Background(), snippet)
		assert.True(t, errors.Is(err, domainErrors.ErrSchemaValidation))

		got, _, err := assessor.Assess(context.Background(), snippet)
		require.NoError(t, err)
		assert.Equal(t, assessment, got)
		next.AssertExpectations(t)
	})
}
