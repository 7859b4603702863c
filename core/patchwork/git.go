package patchwork

import "context"

// Change is one file changed between the default branch and the patch branch.
type Change struct {
	Path    string
	Removed bool
}

// GitClient is the narrow slice of git this package needs. The production
// implementation shells out (services/git); tests use an in-memory fake.
// Reimplementing git is explicitly out of scope.
type GitClient interface {
	Clone(ctx context.Context, url, parentDir, name string, shallow bool) error
	Checkout(ctx context.Context, repoDir, branch string, create bool) error
	DiffNameStatus(ctx context.Context, repoDir, base, head string) ([]Change, error)
	AddAll(ctx context.Context, repoDir string) error
	HasStagedChanges(ctx context.Context, repoDir string) (bool, error)
	Commit(ctx context.Context, repoDir, message string) error
	Push(ctx context.Context, repoDir, branch string) error
}
