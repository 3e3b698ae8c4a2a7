package recipe

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Fetcher materializes the community recipe file set into dir.
// The orchestrator depends on this capability, not on git itself.
type Fetcher interface {
	Fetch(ctx context.Context, dir string) error
}

// GitFetcher shallow-clones an AUR package repository. The clone is always
// fresh; history and tags are never needed.
type GitFetcher struct {
	URL string
}

func (g *GitFetcher) Fetch(ctx context.Context, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          g.URL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", g.URL, err)
	}
	return nil
}
