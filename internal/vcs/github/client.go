package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v80/github"
	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/regex"
	"github.com/thomas-vilte/debtguard/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.RepositoryResolver = (*GitHubClient)(nil)

type RepositoriesService interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
}

type GitHubClient struct {
	repoService RepositoriesService
	token       string
}

// NewGitHubClient builds a client for the public API. The token is optional
// and only needed for private repositories.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		repoService: newAPIClient(token).Repositories,
		token:       token,
	}
}

// NewGitHubClientWithServices builds a client on top of an existing
// repositories service. token only tells the client whether lookups are
// authenticated.
func NewGitHubClientWithServices(repoService RepositoriesService, token string) *GitHubClient {
	return &GitHubClient{repoService: repoService, token: token}
}

func newAPIClient(token string) *github.Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return github.NewClient(httpClient)
}

// ParseRepoURL extracts owner and repository name from an https or ssh
// GitHub address.
func ParseRepoURL(address string) (owner, repo string, ok bool) {
	address = strings.TrimSpace(address)

	var matches []string
	if regex.GitHubSSHRepo.MatchString(address) {
		matches = regex.GitHubSSHRepo.FindStringSubmatch(address)
	} else if regex.GitHubHTTPSRepo.MatchString(address) {
		matches = regex.GitHubHTTPSRepo.FindStringSubmatch(address)
	}

	if len(matches) != 3 {
		return "", "", false
	}
	return matches[1], matches[2], true
}

func (ghc *GitHubClient) CanResolve(address string) bool {
	_, _, ok := ParseRepoURL(address)
	return ok
}

// ResolveCloneURL confirms through the API that the repository behind
// address exists and returns the address to clone. The user's address is
// kept so that SSH remotes still clone with the user's keys. An
// authenticated 404 is an error; an anonymous 404 may be a private
// repository, so it falls back to cloning the address as given, as does
// any other API failure.
func (ghc *GitHubClient) ResolveCloneURL(ctx context.Context, address string) (string, error) {
	log := logger.FromContext(ctx)

	owner, repo, ok := ParseRepoURL(address)
	if !ok {
		return "", appErrors.ErrRepositoryAccess.
			WithContext("address", address)
	}
	fullName := fmt.Sprintf("%s/%s", owner, repo)
	cloneURL := cloneAddress(address)

	repository, resp, err := ghc.repoService.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			if ghc.token != "" {
				return "", appErrors.ErrRemoteNotFound.
					WithError(err).
					WithContext("repository", fullName)
			}
			log.Warn("repository not visible to anonymous GitHub API, cloning address directly",
				"repository", fullName)
			return cloneURL, nil
		}

		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			log.Warn("GitHub API rate limit reached, cloning address directly",
				"repository", fullName,
				"reset", rateErr.Rate.Reset.Time)
		} else {
			log.Warn("could not resolve repository through the GitHub API, cloning address directly",
				"repository", fullName,
				"error", err)
		}
		return cloneURL, nil
	}

	log.Debug("resolved GitHub repository",
		"repository", repository.GetFullName(),
		"default_branch", repository.GetDefaultBranch(),
		"private", repository.GetPrivate())

	return cloneURL, nil
}

// cloneAddress adds the https scheme to bare github.com/owner/repo
// addresses; anything else is cloned exactly as written.
func cloneAddress(address string) string {
	address = strings.TrimSpace(address)
	if regex.GitHubSSHRepo.MatchString(address) || strings.Contains(address, "://") {
		return address
	}
	return "https://" + address
}
