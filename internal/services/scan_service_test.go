package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/git"
	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/report"
	"github.com/thomas-vilte/debtguard/internal/snippet"
)

const testAddress = "https://github.com/octo/hello"

func lines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("value = ")
		b.WriteString(strings.Repeat("1", i))
		b.WriteString("\n")
	}
	return b.String()
}

func addedFile(path string, n int) models.FileChange {
	return models.FileChange{
		Path:   path,
		Status: models.StatusAdded,
		Ranges: []models.LineRange{{Start: 1, End: n}},
	}
}

func assessmentFor(summary string, security ...string) models.Assessment {
	a := models.Assessment{
		SnippetFunctionality: summary,
		NumberOfLines:        5,
		SecurityDebts:        []models.DebtFinding{},
		TechnicalDebts:       []models.DebtFinding{},
	}
	for _, typ := range security {
		a.SecurityDebts = append(a.SecurityDebts, models.DebtFinding{
			Type: typ, Symptom: "s", AffectedArea: "lines 1-2", SuggestedRepair: "r",
		})
	}
	return a
}

func snippetFor(path string) interface{} {
	return mock.MatchedBy(func(s models.Snippet) bool { return s.Path == path })
}

type scanFixture struct {
	walker   *MockRepositoryWalker
	assessor *ai.MockSnippetAssessor
	store    *report.Store
	path     string
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), report.FileName(testAddress))
	walker := new(MockRepositoryWalker)
	walker.On("Address").Return(testAddress).Maybe()
	return &scanFixture{
		walker:   walker,
		assessor: new(ai.MockSnippetAssessor),
		store:    report.NewStore(path),
		path:     path,
	}
}

func (f *scanFixture) service(opts ...ScanOption) *ScanService {
	base := []ScanOption{
		WithScanWalker(f.walker),
		WithScanExtractor(snippet.NewExtractor(config.DefaultConfig().Scan)),
		WithScanAssessor(f.assessor),
		WithScanStore(f.store),
		WithCommitRetryDelay(1),
	}
	return NewScanService(append(base, opts...)...)
}

func (f *scanFixture) commit(hash string, files ...models.FileChange) {
	f.walker.On("GetCommit", mock.Anything, hash).Return(models.Commit{Hash: hash, Files: files}, nil)
	for _, fc := range files {
		f.walker.On("ShowFile", mock.Anything, hash, fc.Path).Return(lines(10), nil).Maybe()
	}
}

func (f *scanFixture) reports(t *testing.T) map[string]models.CommitReport {
	t.Helper()
	reports, err := report.Read(f.path)
	require.NoError(t, err)
	return reports
}

func TestScanService_RecordsCommits(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb"}, nil)
	f.commit("aaa", addedFile("x.py", 10))
	f.commit("bbb", addedFile("y.py", 5))
	f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
		Return(assessmentFor("x does things", "Hardcoded Secrets"), &models.TokenUsage{TotalTokens: 10}, nil)
	f.assessor.On("Assess", mock.Anything, snippetFor("y.py")).
		Return(assessmentFor("y does things"), &models.TokenUsage{TotalTokens: 7}, nil)

	var events []models.ProgressEventType
	summary, err := f.service().Run(context.Background(), ScanOptions{}, func(ev models.ProgressEvent) {
		events = append(events, ev.Type)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.Findings)
	assert.Equal(t, 17, summary.Usage.TotalTokens)
	assert.Equal(t, f.path, summary.ReportPath)
	assert.Equal(t, models.ProgressScanStarted, events[0])
	assert.Contains(t, events, models.ProgressCommitRecorded)
	assert.Contains(t, events, models.ProgressFlushed)

	reports := f.reports(t)
	require.Len(t, reports, 2)
	assert.Equal(t, models.CommitReport{
		SnippetFunctionality: "x does things",
		NumberOfLines:        5,
		SecurityDebts:        assessmentFor("", "Hardcoded Secrets").SecurityDebts,
		TechnicalDebts:       []models.DebtFinding{},
		Location:             "x.py",
		Repository:           testAddress,
	}, reports["aaa"])
	assert.Equal(t, "y.py", reports["bbb"].Location)
}

func TestScanService_ResumeSkipsRecordedCommits(t *testing.T) {
	f := newScanFixture(t)
	f.store.Put("aaa", models.CommitReport{Location: "x.py", Repository: testAddress})
	require.NoError(t, f.store.Flush())

	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb"}, nil)
	f.commit("bbb", addedFile("y.py", 5))
	f.assessor.On("Assess", mock.Anything, snippetFor("y.py")).Return(assessmentFor("y"), nil, nil)

	summary, err := f.service().Run(context.Background(), ScanOptions{Resume: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resumed)
	assert.Equal(t, 1, summary.Analyzed)
	f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "aaa")
	f.assessor.AssertNumberOfCalls(t, "Assess", 1)
	assert.Len(t, f.reports(t), 2)
}

func TestScanService_WithoutResumeStartsOver(t *testing.T) {
	f := newScanFixture(t)
	f.store.Put("stale", models.CommitReport{Location: "old.py"})
	require.NoError(t, f.store.Flush())

	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
	f.commit("aaa", addedFile("x.py", 10))
	f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).Return(assessmentFor("x"), nil, nil)

	_, err := f.service().Run(context.Background(), ScanOptions{}, nil)

	require.NoError(t, err)
	reports := f.reports(t)
	assert.Len(t, reports, 1)
	assert.Contains(t, reports, "aaa")
}

func TestScanService_EmptyCommitsAreNotRecorded(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"docs", "gone", "bin"}, nil)
	f.commit("docs", addedFile("README.md", 3))
	f.commit("gone", models.FileChange{Path: "old.py", Status: models.StatusDeleted})
	f.commit("bin", models.FileChange{Path: "lib.so", Status: models.StatusAdded, Binary: true})

	summary, err := f.service().Run(context.Background(), ScanOptions{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Empty)
	assert.Zero(t, summary.Analyzed)
	f.assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything)
	f.walker.AssertNotCalled(t, "ShowFile", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.reports(t))
}

func TestScanService_MergesMultiFileCommits(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
	f.commit("aaa", addedFile("notes.txt", 2), addedFile("a.go", 4), addedFile("b.go", 6))
	f.assessor.On("Assess", mock.Anything, snippetFor("a.go")).
		Return(assessmentFor("A", "Hardcoded Secrets"), nil, nil)
	f.assessor.On("Assess", mock.Anything, snippetFor("b.go")).
		Return(assessmentFor("B", "Inadequate Encryption"), nil, nil)

	_, err := f.service().Run(context.Background(), ScanOptions{}, nil)

	require.NoError(t, err)
	got := f.reports(t)["aaa"]
	assert.Equal(t, "a.go", got.Location)
	assert.Equal(t, "a.go: A\nb.go: B", got.SnippetFunctionality)
	assert.Equal(t, 10, got.NumberOfLines)
	require.Len(t, got.SecurityDebts, 2)
	assert.Equal(t, "Hardcoded Secrets", got.SecurityDebts[0].Type)
	assert.Equal(t, "Inadequate Encryption", got.SecurityDebts[1].Type)
}

func TestScanService_FailurePolicies(t *testing.T) {
	t.Run("schema failure skips the commit", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb"}, nil)
		f.commit("aaa", addedFile("x.py", 10))
		f.commit("bbb", addedFile("y.py", 5))
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
			Return(models.Assessment{}, nil, domainErrors.ErrSchemaValidation)
		f.assessor.On("Assess", mock.Anything, snippetFor("y.py")).Return(assessmentFor("y"), nil, nil)

		summary, err := f.service().Run(context.Background(), ScanOptions{}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.Analyzed)
		reports := f.reports(t)
		assert.NotContains(t, reports, "aaa")
		assert.Contains(t, reports, "bbb")
		f.walker.AssertNumberOfCalls(t, "GetCommit", 2)
	})

	t.Run("one failing file discards the whole commit", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
		f.commit("aaa", addedFile("a.go", 4), addedFile("b.go", 4))
		f.assessor.On("Assess", mock.Anything, snippetFor("a.go")).Return(assessmentFor("A"), nil, nil)
		f.assessor.On("Assess", mock.Anything, snippetFor("b.go")).
			Return(models.Assessment{}, nil, domainErrors.ErrSchemaValidation)

		summary, err := f.service().Run(context.Background(), ScanOptions{}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Empty(t, f.reports(t))
	})

	t.Run("unavailable model is retried once", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
		f.commit("aaa", addedFile("x.py", 10))
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
			Return(models.Assessment{}, nil, domainErrors.ErrModelUnavailable).Once()
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
			Return(assessmentFor("x"), nil, nil).Once()

		var retries int
		summary, err := f.service().Run(context.Background(), ScanOptions{}, func(ev models.ProgressEvent) {
			if ev.Type == models.ProgressCommitRetry {
				retries++
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, retries)
		assert.Equal(t, 1, summary.Analyzed)
		assert.Contains(t, f.reports(t), "aaa")
	})

	t.Run("unavailable model gives up after the retry budget", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
		f.commit("aaa", addedFile("x.py", 10))
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
			Return(models.Assessment{}, nil, domainErrors.ErrModelUnavailable)

		svc := f.service(WithScanConfig(config.ScanConfig{CommitRetries: 2, FlushEvery: 1}))
		summary, err := svc.Run(context.Background(), ScanOptions{}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		f.assessor.AssertNumberOfCalls(t, "Assess", 3)
	})

	t.Run("auth failure is not retried", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa"}, nil)
		f.commit("aaa", addedFile("x.py", 10))
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).
			Return(models.Assessment{}, nil, domainErrors.ErrModelAuth)

		summary, err := f.service().Run(context.Background(), ScanOptions{}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		f.assessor.AssertNumberOfCalls(t, "Assess", 1)
	})

	t.Run("repository failure is fatal and keeps recorded work", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb", "ccc"}, nil)
		f.commit("aaa", addedFile("x.py", 10))
		f.walker.On("GetCommit", mock.Anything, "bbb").
			Return(models.Commit{}, domainErrors.ErrReadCommit.WithError(errors.New("bad object")))
		f.assessor.On("Assess", mock.Anything, snippetFor("x.py")).Return(assessmentFor("x"), nil, nil)

		svc := f.service(WithScanConfig(config.ScanConfig{CommitRetries: 1, FlushEvery: 10}))
		_, err := svc.Run(context.Background(), ScanOptions{}, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, domainErrors.ErrReadCommit)
		f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "ccc")
		assert.Contains(t, f.reports(t), "aaa")
	})

	t.Run("listing failure is fatal", func(t *testing.T) {
		f := newScanFixture(t)
		f.walker.On("ListCommits", mock.Anything).Return(nil, domainErrors.ErrListCommits)

		_, err := f.service().Run(context.Background(), ScanOptions{}, nil)

		assert.ErrorIs(t, err, domainErrors.ErrListCommits)
	})

	t.Run("corrupt report on resume is fatal", func(t *testing.T) {
		f := newScanFixture(t)
		require.NoError(t, os.WriteFile(f.path, []byte("{not json"), 0o644))

		_, err := f.service().Run(context.Background(), ScanOptions{Resume: true}, nil)

		assert.ErrorIs(t, err, domainErrors.ErrReportCorrupt)
		f.walker.AssertNotCalled(t, "ListCommits", mock.Anything)
	})
}

type countingStore struct {
	*report.Store
	flushes int
	failAt  int
}

func (c *countingStore) Flush() error {
	c.flushes++
	if c.failAt > 0 && c.flushes == c.failAt {
		return domainErrors.ErrReportStoreIO.WithError(errors.New("disk full"))
	}
	return c.Store.Flush()
}

func TestScanService_FlushPolicy(t *testing.T) {
	t.Run("flushes every N recorded commits and at the end", func(t *testing.T) {
		f := newScanFixture(t)
		store := &countingStore{Store: f.store}
		f.walker.On("ListCommits", mock.Anything).Return([]string{"a", "b", "c"}, nil)
		for _, h := range []string{"a", "b", "c"} {
			f.commit(h, addedFile(h+".py", 3))
			f.assessor.On("Assess", mock.Anything, snippetFor(h+".py")).Return(assessmentFor(h), nil, nil)
		}

		svc := f.service(WithScanStore(store), WithScanConfig(config.ScanConfig{CommitRetries: 1, FlushEvery: 2}))
		_, err := svc.Run(context.Background(), ScanOptions{}, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, store.flushes)
		assert.Len(t, f.reports(t), 3)
	})

	t.Run("flush failure is fatal", func(t *testing.T) {
		f := newScanFixture(t)
		store := &countingStore{Store: f.store, failAt: 1}
		f.walker.On("ListCommits", mock.Anything).Return([]string{"a", "b"}, nil)
		f.commit("a", addedFile("a.py", 3))
		f.commit("b", addedFile("b.py", 3))
		f.assessor.On("Assess", mock.Anything, mock.Anything).Return(assessmentFor("x"), nil, nil)

		_, err := f.service(WithScanStore(store)).Run(context.Background(), ScanOptions{}, nil)

		assert.ErrorIs(t, err, domainErrors.ErrReportStoreIO)
		assert.True(t, domainErrors.IsFatal(err))
		f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "b")
	})
}

func TestScanService_CancelFlushesRecordedWork(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"a", "b", "c"}, nil)
	f.commit("a", addedFile("a.py", 3))
	f.assessor.On("Assess", mock.Anything, snippetFor("a.py")).Return(assessmentFor("a"), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := f.service(WithScanConfig(config.ScanConfig{CommitRetries: 1, FlushEvery: 100}))
	summary, err := svc.Run(ctx, ScanOptions{}, func(ev models.ProgressEvent) {
		if ev.Type == models.ProgressCommitRecorded {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Analyzed)
	f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "b")
	assert.Contains(t, f.reports(t), "a")
}

func TestScanService_MaxCommits(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"a", "b", "c"}, nil)
	f.commit("a", addedFile("a.py", 3))
	f.assessor.On("Assess", mock.Anything, mock.Anything).Return(assessmentFor("a"), nil, nil)

	summary, err := f.service().Run(context.Background(), ScanOptions{MaxCommits: 1}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Analyzed)
	f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "b")
}

func TestScanService_ResumedBatchesAdvance(t *testing.T) {
	f := newScanFixture(t)
	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb", "ccc"}, nil)
	f.commit("aaa", addedFile("a.py", 3))
	f.commit("bbb", addedFile("b.py", 3))
	f.assessor.On("Assess", mock.Anything, mock.Anything).Return(assessmentFor("batch"), nil, nil)

	first, err := f.service().Run(context.Background(), ScanOptions{MaxCommits: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Analyzed)

	f.store = report.NewStore(f.path)
	second, err := f.service().Run(context.Background(), ScanOptions{MaxCommits: 1, Resume: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, second.Resumed)
	assert.Equal(t, 1, second.Analyzed)
	f.walker.AssertNotCalled(t, "GetCommit", mock.Anything, "ccc")
	reports := f.reports(t)
	assert.Len(t, reports, 2)
	assert.Contains(t, reports, "aaa")
	assert.Contains(t, reports, "bbb")
}

func TestScanService_LocationBelongsToCommit(t *testing.T) {
	f := newScanFixture(t)
	commits := map[string]models.Commit{
		"aaa": {Hash: "aaa", Files: []models.FileChange{addedFile("README.md", 2), addedFile("src/app.py", 4)}},
		"bbb": {Hash: "bbb", Files: []models.FileChange{addedFile("lib/util.go", 6), addedFile("lib/more.go", 3)}},
	}
	f.walker.On("ListCommits", mock.Anything).Return([]string{"aaa", "bbb"}, nil)
	for hash, c := range commits {
		f.commit(hash, c.Files...)
	}
	f.assessor.On("Assess", mock.Anything, mock.Anything).Return(assessmentFor("code"), nil, nil)

	_, err := f.service().Run(context.Background(), ScanOptions{}, nil)

	require.NoError(t, err)
	reports := f.reports(t)
	require.Len(t, reports, 2)
	for hash, r := range reports {
		assert.True(t, commits[hash].HasFile(r.Location), "%s: %s is not part of the commit", hash, r.Location)
	}
}

func TestScanService_NotConfigured(t *testing.T) {
	_, err := NewScanService().Run(context.Background(), ScanOptions{}, nil)
	assert.Equal(t, domainErrors.TypeInternal, domainErrors.TypeOf(err))
}

// End-to-end over a real repository: two commits, canned model answers,
// then a resumed run that must not reach the model at all.

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User", "GIT_COMMITTER_EMAIL=test@example.com")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func cannedAnswer(summary string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"snippet_functionality": summary,
		"number_of_lines":       0,
		"securityDebts":         []interface{}{},
		"technicalDebts": []map[string]string{{
			"type": "Hard-coded Values", "symptom": "literal", "affected_area": "lines 1-1", "suggested_repair": "extract",
		}},
	})
	return "```json\n" + string(data) + "\n```"
}

func TestScanService_EndToEnd(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	ctx := context.Background()

	repoDir := t.TempDir()
	gitRun(t, repoDir, "init", "--quiet")
	gitRun(t, repoDir, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "x.py"), []byte(lines(10)), 0o644))
	gitRun(t, repoDir, "add", "-A")
	gitRun(t, repoDir, "commit", "--quiet", "-m", "A")
	hashA := gitRun(t, repoDir, "rev-parse", "HEAD")
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "y.py"), []byte(lines(5)), 0o644))
	gitRun(t, repoDir, "add", "-A")
	gitRun(t, repoDir, "commit", "--quiet", "-m", "B")
	hashB := gitRun(t, repoDir, "rev-parse", "HEAD")

	repo, err := git.Open(ctx, repoDir, git.OpenOptions{})
	require.NoError(t, err)
	defer repo.Close()

	outPath := filepath.Join(t.TempDir(), report.FileName(repoDir))
	extractor := snippet.NewExtractor(config.DefaultConfig().Scan)

	provider := new(ai.MockCompletionProvider)
	provider.On("GetModelName").Return("canned")
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { return strings.Contains(p, "File: x.py\n") })).
		Return(cannedAnswer("x module"), &models.TokenUsage{TotalTokens: 3}, nil)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { return strings.Contains(p, "File: y.py\n") })).
		Return(cannedAnswer("y module"), &models.TokenUsage{TotalTokens: 2}, nil)

	run := func(assessor ai.SnippetAssessor, resume bool) models.ScanSummary {
		svc := NewScanService(
			WithScanWalker(repo),
			WithScanExtractor(extractor),
			WithScanAssessor(assessor),
			WithScanStore(report.NewStore(outPath)),
		)
		summary, err := svc.Run(ctx, ScanOptions{Resume: resume}, nil)
		require.NoError(t, err)
		return summary
	}

	summary := run(ai.NewAssessor(provider, 3), false)
	assert.Equal(t, 2, summary.Analyzed)

	first, err := os.ReadFile(outPath)
	require.NoError(t, err)

	reports, err := report.Read(outPath)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "x module", reports[hashA].SnippetFunctionality)
	assert.Equal(t, "x.py", reports[hashA].Location)
	assert.Equal(t, "y module", reports[hashB].SnippetFunctionality)
	assert.Equal(t, "y.py", reports[hashB].Location)
	assert.Equal(t, repoDir, reports[hashB].Repository)
	require.Len(t, reports[hashB].TechnicalDebts, 1)

	t.Run("resume never calls the model", func(t *testing.T) {
		untouchable := new(ai.MockSnippetAssessor)

		summary := run(untouchable, true)

		assert.Equal(t, 2, summary.Resumed)
		untouchable.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything)
		again, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	})

	t.Run("rerun without resume is byte identical", func(t *testing.T) {
		run(ai.NewAssessor(provider, 3), false)

		again, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	})
}
