package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
)

const defaultCommitRetryDelay = 2 * time.Second

// repositoryWalker is the read side of a git repository needed by the scan.
type repositoryWalker interface {
	Address() string
	ListCommits(ctx context.Context) ([]string, error)
	GetCommit(ctx context.Context, hash string) (models.Commit, error)
	ShowFile(ctx context.Context, hash, path string) (string, error)
}

// snippetExtractor decides which file changes are analyzed and slices them.
type snippetExtractor interface {
	Eligible(change models.FileChange) bool
	Extract(commit models.Commit, change models.FileChange, content string) (models.Snippet, bool)
}

// reportStore persists one report per commit.
type reportStore interface {
	Path() string
	Load() error
	Has(hash string) bool
	Put(hash string, report models.CommitReport)
	Flush() error
}

// ScanOptions are the per-run switches of a scan.
type ScanOptions struct {
	Resume bool
	// MaxCommits caps the commits processed in one run. Commits skipped
	// by resume do not count, so repeated resumed runs advance.
	MaxCommits int
}

type ScanService struct {
	walker           repositoryWalker
	extractor        snippetExtractor
	assessor         ai.SnippetAssessor
	store            reportStore
	commitRetries    int
	flushEvery       int
	commitRetryDelay time.Duration
}

type ScanOption func(*ScanService)

func WithScanWalker(walker repositoryWalker) ScanOption {
	return func(s *ScanService) {
		s.walker = walker
	}
}

func WithScanExtractor(extractor snippetExtractor) ScanOption {
	return func(s *ScanService) {
		s.extractor = extractor
	}
}

func WithScanAssessor(assessor ai.SnippetAssessor) ScanOption {
	return func(s *ScanService) {
		s.assessor = assessor
	}
}

func WithScanStore(store reportStore) ScanOption {
	return func(s *ScanService) {
		s.store = store
	}
}

// WithScanConfig applies the retry and flush policy of cfg.
func WithScanConfig(cfg config.ScanConfig) ScanOption {
	return func(s *ScanService) {
		s.commitRetries = cfg.CommitRetries
		s.flushEvery = cfg.FlushEvery
	}
}

func WithCommitRetryDelay(d time.Duration) ScanOption {
	return func(s *ScanService) {
		s.commitRetryDelay = d
	}
}

func NewScanService(opts ...ScanOption) *ScanService {
	s := &ScanService{
		commitRetries:    1,
		flushEvery:       1,
		commitRetryDelay: defaultCommitRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.flushEvery < 1 {
		s.flushEvery = 1
	}
	if s.commitRetries < 0 {
		s.commitRetries = 0
	}
	return s
}

// Run walks the history oldest first and records one report per commit
// that has at least one analyzable snippet. Model and schema failures skip
// the commit; repository and store failures abort the run. The store is
// flushed before Run returns, including on cancellation.
func (s *ScanService) Run(ctx context.Context, opts ScanOptions, progress func(models.ProgressEvent)) (models.ScanSummary, error) {
	log := logger.FromContext(ctx)
	emit := func(ev models.ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	if s.walker == nil || s.extractor == nil || s.assessor == nil || s.store == nil {
		return models.ScanSummary{}, domainErrors.NewAppError(domainErrors.TypeInternal, "scan service is not fully configured", nil)
	}

	summary := models.ScanSummary{ReportPath: s.store.Path()}

	if opts.Resume {
		if err := s.store.Load(); err != nil {
			log.Error("failed to load previous report",
				"error", err,
				"path", s.store.Path())
			return summary, err
		}
	}

	hashes, err := s.walker.ListCommits(ctx)
	if err != nil {
		return summary, err
	}
	summary.Total = len(hashes)

	log.Info("scan started",
		"repository", s.walker.Address(),
		"total", summary.Total,
		"resume", opts.Resume)
	emit(models.ProgressEvent{Type: models.ProgressScanStarted, Total: summary.Total})

	pending := 0
	flush := func() error {
		if err := s.store.Flush(); err != nil {
			log.Error("failed to flush report",
				"error", err,
				"path", s.store.Path())
			return err
		}
		pending = 0
		emit(models.ProgressEvent{Type: models.ProgressFlushed, Message: s.store.Path()})
		return nil
	}

	for i, hash := range hashes {
		if ctx.Err() != nil {
			break
		}

		index := i + 1
		commitLog := log.With("commit", hash)

		if opts.Resume && s.store.Has(hash) {
			summary.Resumed++
			commitLog.Debug("commit already recorded, skipping")
			emit(models.ProgressEvent{Type: models.ProgressCommitResumed, CommitHash: hash, Index: index, Total: summary.Total})
			continue
		}

		if opts.MaxCommits > 0 && summary.Processed() >= opts.MaxCommits {
			log.Info("commit limit reached",
				"max_commits", opts.MaxCommits)
			break
		}

		emit(models.ProgressEvent{Type: models.ProgressCommitStarted, CommitHash: hash, Index: index, Total: summary.Total})

		report, recorded, err := s.scanCommitWithRetry(ctx, hash, index, summary.Total, &summary.Usage, emit)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if domainErrors.IsFatal(err) {
				commitLog.Error("fatal error while scanning commit", "error", err)
				if flushErr := flush(); flushErr != nil {
					commitLog.Warn("final flush failed", "error", flushErr)
				}
				return summary, err
			}

			summary.Failed++
			commitLog.Warn("skipping commit", "error", err)
			emit(models.ProgressEvent{Type: models.ProgressCommitFailed, CommitHash: hash, Index: index, Total: summary.Total, Err: err})
			continue
		}

		if !recorded {
			summary.Empty++
			commitLog.Debug("commit has no analyzable snippet")
			emit(models.ProgressEvent{Type: models.ProgressCommitEmpty, CommitHash: hash, Index: index, Total: summary.Total})
			continue
		}

		s.store.Put(hash, report)
		summary.Analyzed++
		summary.Findings += report.FindingsCount()
		pending++
		commitLog.Info("commit recorded",
			"path", report.Location,
			"findings", report.FindingsCount())
		emit(models.ProgressEvent{
			Type:       models.ProgressCommitRecorded,
			CommitHash: hash,
			Path:       report.Location,
			Index:      index,
			Total:      summary.Total,
			Message:    fmt.Sprintf("%d", report.FindingsCount()),
		})

		if pending >= s.flushEvery {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}

	if err := ctx.Err(); err != nil {
		log.Warn("scan interrupted",
			"analyzed", summary.Analyzed,
			"total", summary.Total)
		return summary, err
	}

	log.Info("scan finished",
		"analyzed", summary.Analyzed,
		"resumed", summary.Resumed,
		"empty", summary.Empty,
		"failed", summary.Failed,
		"findings", summary.Findings)

	return summary, nil
}

// scanCommitWithRetry retries a commit whose model endpoint stayed
// unavailable, up to commitRetries extra attempts with doubling delays.
func (s *ScanService) scanCommitWithRetry(
	ctx context.Context,
	hash string,
	index, total int,
	usage *models.TokenUsage,
	emit func(models.ProgressEvent),
) (models.CommitReport, bool, error) {
	for attempt := 0; ; attempt++ {
		report, recorded, err := s.scanCommit(ctx, hash, usage, emit)
		if err == nil || !errors.Is(err, domainErrors.ErrModelUnavailable) || attempt >= s.commitRetries {
			return report, recorded, err
		}

		delay := s.commitRetryDelay << uint(attempt)
		logger.Warn(ctx, "model unavailable, retrying commit",
			"commit", hash,
			"attempt", attempt+1,
			"backoff", delay)
		emit(models.ProgressEvent{Type: models.ProgressCommitRetry, CommitHash: hash, Index: index, Total: total, Err: err})

		select {
		case <-ctx.Done():
			return models.CommitReport{}, false, ctx.Err()
		case <-time.After(delay):
		}
	}
}

type fileAssessment struct {
	path       string
	assessment models.Assessment
}

// scanCommit assesses every eligible file of one commit. Any failure
// discards the whole commit.
func (s *ScanService) scanCommit(ctx context.Context, hash string, usage *models.TokenUsage, emit func(models.ProgressEvent)) (models.CommitReport, bool, error) {
	commit, err := s.walker.GetCommit(ctx, hash)
	if err != nil {
		return models.CommitReport{}, false, err
	}

	var assessed []fileAssessment
	for _, change := range commit.Files {
		if !s.extractor.Eligible(change) {
			continue
		}

		content, err := s.walker.ShowFile(ctx, commit.Hash, change.Path)
		if err != nil {
			return models.CommitReport{}, false, err
		}

		snippet, ok := s.extractor.Extract(commit, change, content)
		if !ok {
			continue
		}

		assessment, callUsage, err := s.assessor.Assess(ctx, snippet)
		usage.Add(callUsage)
		if err != nil {
			return models.CommitReport{}, false, err
		}

		emit(models.ProgressEvent{Type: models.ProgressSnippetAnalyzed, CommitHash: hash, Path: change.Path})
		assessed = append(assessed, fileAssessment{path: change.Path, assessment: assessment})
	}

	if len(assessed) == 0 {
		return models.CommitReport{}, false, nil
	}

	return mergeAssessments(assessed, s.walker.Address()), true, nil
}

// mergeAssessments folds the per-file answers of a commit into its report.
// The location is the first assessed file.
func mergeAssessments(assessed []fileAssessment, repository string) models.CommitReport {
	report := models.CommitReport{
		Location:       assessed[0].path,
		Repository:     repository,
		SecurityDebts:  []models.DebtFinding{},
		TechnicalDebts: []models.DebtFinding{},
	}

	if len(assessed) == 1 {
		report.SnippetFunctionality = assessed[0].assessment.SnippetFunctionality
	} else {
		lines := make([]string, 0, len(assessed))
		for _, a := range assessed {
			lines = append(lines, a.path+": "+a.assessment.SnippetFunctionality)
		}
		report.SnippetFunctionality = strings.Join(lines, "\n")
	}

	for _, a := range assessed {
		report.NumberOfLines += a.assessment.NumberOfLines
		report.SecurityDebts = append(report.SecurityDebts, a.assessment.SecurityDebts...)
		report.TechnicalDebts = append(report.TechnicalDebts, a.assessment.TechnicalDebts...)
	}

	return report
}
