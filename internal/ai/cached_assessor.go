package ai

import (
	"context"
	"strconv"

	"github.com/thomas-vilte/debtguard/internal/cache"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
)

// assessmentCache is the subset of cache.Cache the assessor needs.
type assessmentCache interface {
	Get(key string, v interface{}) (bool, error)
	Set(key string, v interface{}) error
}

// CachedAssessor answers repeated snippets from a local cache. Only
// validated assessments are stored, so a cache hit never needs repair.
type CachedAssessor struct {
	next  SnippetAssessor
	cache assessmentCache
	model string
}

var _ SnippetAssessor = (*CachedAssessor)(nil)

// NewCachedAssessor wraps next. model is part of every key so switching
// models never reuses answers.
func NewCachedAssessor(next SnippetAssessor, c assessmentCache, model string) *CachedAssessor {
	return &CachedAssessor{
		next:  next,
		cache: c,
		model: model,
	}
}

func (a *CachedAssessor) Assess(ctx context.Context, snippet models.Snippet) (models.Assessment, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)
	key := snippetKey(a.model, snippet)

	var cached models.Assessment
	found, err := a.cache.Get(key, &cached)
	if err != nil {
		log.Warn("ignoring unreadable cache entry", "path", snippet.Path, "error", err)
	}
	if found {
		log.Debug("assessment cache hit", "commit", snippet.CommitHash, "path", snippet.Path)
		return cached, nil, nil
	}

	assessment, usage, err := a.next.Assess(ctx, snippet)
	if err != nil {
		return assessment, usage, err
	}

	if err := a.cache.Set(key, assessment); err != nil {
		log.Warn("failed to cache assessment", "path", snippet.Path, "error", err)
	}
	return assessment, usage, nil
}

func snippetKey(model string, s models.Snippet) string {
	return cache.Key(
		model,
		s.Language,
		s.Path,
		strconv.Itoa(s.Span.Start),
		strconv.Itoa(s.Span.End),
		strconv.Itoa(s.TextStart),
		s.Text,
	)
}
