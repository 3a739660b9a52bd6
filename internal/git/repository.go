package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/vcs"
)

const (
	defaultRev = "HEAD"
	fieldSep   = "\x1f"
)

type OpenOptions struct {
	// Rev is the revision whose history is walked. Defaults to HEAD.
	Rev string
	// Since is passed to git log --since when set.
	Since string
	// CloneDir is the parent directory for temporary clones.
	CloneDir string
	Resolver vcs.RepositoryResolver
}

// Repository is a git work tree, either opened in place or cloned into a
// temporary directory that Close removes.
type Repository struct {
	dir     string
	address string
	rev     string
	since   string
	tempDir string
}

// Open prepares address for walking. A local work tree is used as is;
// anything else is cloned.
func Open(ctx context.Context, address string, opts OpenOptions) (*Repository, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(address) == "" {
		return nil, appErrors.ErrMissingArgument
	}

	repo := &Repository{
		address: address,
		rev:     opts.Rev,
		since:   opts.Since,
	}
	if repo.rev == "" {
		repo.rev = defaultRev
	}

	if info, err := os.Stat(address); err == nil && info.IsDir() {
		root, err := runGit(ctx, address, "rev-parse", "--show-toplevel")
		if err != nil {
			return nil, appErrors.ErrNotInGitRepo.
				WithError(err).
				WithContext("address", address)
		}
		repo.dir = strings.TrimSpace(root)
		log.Debug("using local work tree", "path", repo.dir)
		return repo, nil
	}

	cloneURL := address
	if opts.Resolver != nil && opts.Resolver.CanResolve(address) {
		resolved, err := opts.Resolver.ResolveCloneURL(ctx, address)
		if err != nil {
			return nil, err
		}
		cloneURL = resolved
	}

	tempDir, err := os.MkdirTemp(opts.CloneDir, "debtguard-*")
	if err != nil {
		return nil, appErrors.ErrRepositoryAccess.WithError(err)
	}

	target := filepath.Join(tempDir, "repo")
	log.Info("cloning repository", "url", cloneURL, "path", target)

	if _, err := runGit(ctx, "", "clone", "--quiet", "--no-checkout", cloneURL, target); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, appErrors.ErrCloneFailed.
			WithError(err).
			WithContext("address", address)
	}

	repo.dir = target
	repo.tempDir = tempDir
	return repo, nil
}

// Dir returns the local work tree being walked.
func (r *Repository) Dir() string {
	return r.dir
}

// Address returns the address the repository was opened from.
func (r *Repository) Address() string {
	return r.address
}

// Close removes the temporary clone, if any.
func (r *Repository) Close() error {
	if r.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(r.tempDir)
	r.tempDir = ""
	return err
}

// ListCommits returns the hashes reachable from the configured revision,
// oldest first. Every call walks the history from scratch.
func (r *Repository) ListCommits(ctx context.Context) ([]string, error) {
	if _, err := runGit(ctx, r.dir, "rev-parse", "--verify", "--quiet", r.rev+"^{commit}"); err != nil {
		if r.rev == defaultRev {
			// a freshly initialized repository has no history to walk
			return []string{}, nil
		}
		return nil, appErrors.ErrListCommits.
			WithError(err).
			WithContext("rev", r.rev)
	}

	args := []string{"log", "--reverse", "--date-order", "--format=%H"}
	if r.since != "" {
		args = append(args, "--since="+r.since)
	}
	args = append(args, r.rev, "--")

	out, err := runGit(ctx, r.dir, args...)
	if err != nil {
		return nil, appErrors.ErrListCommits.
			WithError(err).
			WithContext("rev", r.rev)
	}

	hashes := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			hashes = append(hashes, line)
		}
	}
	return hashes, nil
}

// GetCommit loads the metadata of hash and its zero-context diff against
// the first parent (or the empty tree for a root commit).
func (r *Repository) GetCommit(ctx context.Context, hash string) (models.Commit, error) {
	out, err := runGit(ctx, r.dir,
		"show",
		"--no-color",
		"--no-ext-diff",
		"--no-textconv",
		"--unified=0",
		"--find-renames",
		"--diff-merges=first-parent",
		"--format=%H%x1f%an%x1f%ae%x1f%aI",
		hash,
		"--",
	)
	if err != nil {
		return models.Commit{}, appErrors.ErrReadCommit.
			WithError(err).
			WithContext("commit", hash)
	}

	header, body, _ := strings.Cut(out, "\n")
	commit, err := parseHeader(header)
	if err != nil {
		return models.Commit{}, appErrors.ErrReadCommit.
			WithError(err).
			WithContext("commit", hash)
	}

	commit.Files = ParseDiff(body)
	return commit, nil
}

// ShowFile returns the contents of path as of the given commit.
func (r *Repository) ShowFile(ctx context.Context, hash, path string) (string, error) {
	out, err := runGit(ctx, r.dir, "show", "--no-color", hash+":"+path)
	if err != nil {
		return "", appErrors.ErrReadFile.
			WithError(err).
			WithContext("commit", hash).
			WithContext("path", path)
	}
	return out, nil
}

func parseHeader(header string) (models.Commit, error) {
	parts := strings.Split(strings.TrimSpace(header), fieldSep)
	if len(parts) != 4 {
		return models.Commit{}, fmt.Errorf("unexpected commit header %q", header)
	}

	ts, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return models.Commit{}, fmt.Errorf("invalid commit date %q: %w", parts[3], err)
	}

	return models.Commit{
		Hash:        parts[0],
		Author:      parts[1],
		AuthorEmail: parts[2],
		Timestamp:   ts,
	}, nil
}

// runGit runs git in dir and returns its stdout. Stderr is folded into the
// returned error.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	name := args[0]
	args = append([]string{"-c", "core.quotePath=false"}, args...)
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", err
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", name, msg)
		}
		return "", fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.String(), nil
}
