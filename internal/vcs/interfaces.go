package vcs

import "context"

// RepositoryResolver turns the address of a hosted repository into a URL
// that git can clone, confirming on the way that the repository exists.
type RepositoryResolver interface {
	// CanResolve reports whether address belongs to this provider.
	CanResolve(address string) bool
	// ResolveCloneURL returns the canonical clone URL for address.
	ResolveCloneURL(ctx context.Context, address string) (string, error)
}
