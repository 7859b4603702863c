package classroom

import (
	"context"

	"github.com/ianchen-tw/invisible-hand/core"
)

// DryDirectory is a RemoteDirectory for rehearsal runs: every mutating call
// succeeds without touching the network, and reads run against a simulated
// snapshot (empty team, no pending invites, every user valid) so the
// classification logic still executes end to end.
type DryDirectory struct {
	inner core.RemoteDirectory
}

var _ core.RemoteDirectory = (*DryDirectory)(nil)

func NewDryDirectory(inner core.RemoteDirectory) *DryDirectory {
	return &DryDirectory{inner: inner}
}

func (d *DryDirectory) CheckToken(ctx context.Context) error { return nil }

func (d *DryDirectory) UserExists(ctx context.Context, handle string) (bool, error) {
	return true, nil
}

func (d *DryDirectory) TeamMembers(ctx context.Context, team string) ([]string, error) {
	return nil, nil
}

func (d *DryDirectory) MembershipState(ctx context.Context, team, handle string) (core.MembershipState, error) {
	return core.MembershipUnknown, nil
}

func (d *DryDirectory) Invite(ctx context.Context, team, handle string) error { return nil }

func (d *DryDirectory) GrantTeamRead(ctx context.Context, team, repo string) error { return nil }

// Read-only repository lookups still hit the real directory; they carry no
// side effects and keep the rehearsal output faithful.
func (d *DryDirectory) RepoEvents(ctx context.Context, repo string) ([]core.RepoEvent, error) {
	return d.inner.RepoEvents(ctx, repo)
}

func (d *DryDirectory) ReposWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return d.inner.ReposWithPrefix(ctx, prefix)
}

func (d *DryDirectory) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	return d.inner.BranchExists(ctx, repo, branch)
}

func (d *DryDirectory) DefaultBranch(ctx context.Context, repo string) (string, error) {
	return d.inner.DefaultBranch(ctx, repo)
}

func (d *DryDirectory) CloneURL(repo string) string { return d.inner.CloneURL(repo) }

func (d *DryDirectory) FindIssue(ctx context.Context, repo, title string) (int, string, bool, error) {
	return d.inner.FindIssue(ctx, repo, title)
}

func (d *DryDirectory) CreateIssue(ctx context.Context, repo, title, body string) error { return nil }

func (d *DryDirectory) ReopenIssue(ctx context.Context, repo string, number int, title, body string) error {
	return nil
}

func (d *DryDirectory) CreatePull(ctx context.Context, repo, title, body, head, base string) error {
	return nil
}
