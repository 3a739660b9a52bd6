package providers

import (
	"os"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/vcs"
	"github.com/thomas-vilte/debtguard/internal/vcs/github"
)

const githubTokenEnv = "GITHUB_TOKEN"

// NewRepositoryResolver returns the resolver used for remote addresses.
// GITHUB_TOKEN, when set, authenticates the metadata lookups.
func NewRepositoryResolver() vcs.RepositoryResolver {
	return github.NewGitHubClient(strings.TrimSpace(os.Getenv(githubTokenEnv)))
}
