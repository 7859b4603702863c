package classroom

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core"
)

var ErrCannotFetchTeam = errors.New("cannot fetch team from the remote platform")

// Team is a snapshot of a platform team taken at construction time. The
// member set is fetched exactly once; writes go through the directory and are
// only re-verified by a later run.
type Team struct {
	Slug    string
	dir     core.RemoteDirectory
	members map[string]struct{}
}

// NewTeam resolves the team and its membership immediately so that a bad slug
// fails before any reconciliation work starts.
func NewTeam(ctx context.Context, dir core.RemoteDirectory, slug string) (*Team, error) {
	handles, err := dir.TeamMembers(ctx, slug)
	if err != nil {
		return nil, errors.Wrapf(ErrCannotFetchTeam, "team %q: %v", slug, err)
	}
	members := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		members[h] = struct{}{}
	}
	return &Team{Slug: slug, dir: dir, members: members}, nil
}

func (t *Team) Len() int { return len(t.members) }

func (t *Team) Contains(handle string) bool {
	_, ok := t.members[handle]
	return ok
}

// Members returns the snapshot handles, sorted for stable display.
func (t *Team) Members() []string {
	out := make([]string, 0, len(t.members))
	for h := range t.members {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (t *Team) MembershipState(ctx context.Context, handle string) (core.MembershipState, error) {
	return t.dir.MembershipState(ctx, t.Slug, handle)
}

func (t *Team) Invite(ctx context.Context, handle string) error {
	return t.dir.Invite(ctx, t.Slug, handle)
}

func (t *Team) GrantRead(ctx context.Context, repo string) error {
	return t.dir.GrantTeamRead(ctx, t.Slug, repo)
}
