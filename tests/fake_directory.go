package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core"
)

type (
	FakeIssue struct {
		Number int
		Title  string
		Body   string
		Open   bool
	}

	FakePull struct {
		Repo  string
		Title string
		Body  string
		Head  string
		Base  string
	}

	// FakeDirectory is the in-memory RemoteDirectory used across package
	// tests. Zero values behave like an empty organization.
	FakeDirectory struct {
		mu sync.Mutex

		Users    map[string]bool                            // handle -> exists
		Teams    map[string]map[string]core.MembershipState // team -> handle -> state
		Events   map[string][]core.RepoEvent                // repo -> feed, newest first
		Repos    []string
		Branches map[string]map[string]bool // repo -> branch -> exists
		Issues   map[string][]*FakeIssue
		Pulls    []FakePull

		FailInvites map[string]bool // handle -> invite returns an error

		InviteCalls   map[string]int
		MutationCalls int
	}
)

var _ core.RemoteDirectory = (*FakeDirectory)(nil)

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		Users:       make(map[string]bool),
		Teams:       make(map[string]map[string]core.MembershipState),
		Events:      make(map[string][]core.RepoEvent),
		Branches:    make(map[string]map[string]bool),
		Issues:      make(map[string][]*FakeIssue),
		FailInvites: make(map[string]bool),
		InviteCalls: make(map[string]int),
	}
}

func (d *FakeDirectory) CheckToken(ctx context.Context) error { return nil }

func (d *FakeDirectory) UserExists(ctx context.Context, handle string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Users[handle], nil
}

func (d *FakeDirectory) TeamMembers(ctx context.Context, team string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	states, ok := d.Teams[team]
	if !ok {
		return nil, errors.Wrapf(core.ErrRemoteNotFound, "team %q", team)
	}
	var members []string
	for h, state := range states {
		if state == core.MembershipMember {
			members = append(members, h)
		}
	}
	return members, nil
}

func (d *FakeDirectory) MembershipState(ctx context.Context, team, handle string) (core.MembershipState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if states, ok := d.Teams[team]; ok {
		if state, ok := states[handle]; ok {
			return state, nil
		}
	}
	return core.MembershipUnknown, nil
}

func (d *FakeDirectory) Invite(ctx context.Context, team, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MutationCalls++
	d.InviteCalls[handle]++
	if d.FailInvites[handle] {
		return fmt.Errorf("invite rejected for %s", handle)
	}
	if d.Teams[team] == nil {
		d.Teams[team] = make(map[string]core.MembershipState)
	}
	d.Teams[team][handle] = core.MembershipPending
	return nil
}

func (d *FakeDirectory) GrantTeamRead(ctx context.Context, team, repo string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MutationCalls++
	return nil
}

func (d *FakeDirectory) RepoEvents(ctx context.Context, repo string) ([]core.RepoEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	events, ok := d.Events[repo]
	if !ok {
		return nil, errors.Wrapf(core.ErrRemoteNotFound, "repo %q", repo)
	}
	return events, nil
}

func (d *FakeDirectory) ReposWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, r := range d.Repos {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *FakeDirectory) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Branches[repo][branch], nil
}

func (d *FakeDirectory) DefaultBranch(ctx context.Context, repo string) (string, error) {
	return "master", nil
}

func (d *FakeDirectory) CloneURL(repo string) string {
	return "https://example.com/org/" + repo + ".git"
}

func (d *FakeDirectory) FindIssue(ctx context.Context, repo, title string) (int, string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, is := range d.Issues[repo] {
		if strings.TrimSpace(is.Title) == strings.TrimSpace(title) {
			return is.Number, is.Body, true, nil
		}
	}
	return 0, "", false, nil
}

func (d *FakeDirectory) CreateIssue(ctx context.Context, repo, title, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MutationCalls++
	d.Issues[repo] = append(d.Issues[repo], &FakeIssue{
		Number: len(d.Issues[repo]) + 1,
		Title:  title,
		Body:   body,
		Open:   true,
	})
	return nil
}

func (d *FakeDirectory) ReopenIssue(ctx context.Context, repo string, number int, title, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MutationCalls++
	for _, is := range d.Issues[repo] {
		if is.Number == number {
			is.Title, is.Body, is.Open = title, body, true
			return nil
		}
	}
	return errors.Wrapf(core.ErrRemoteNotFound, "issue #%d on %q", number, repo)
}

func (d *FakeDirectory) CreatePull(ctx context.Context, repo, title, body, head, base string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MutationCalls++
	d.Pulls = append(d.Pulls, FakePull{Repo: repo, Title: title, Body: body, Head: head, Base: base})
	return nil
}

// SetTeam replaces a team's membership map.
func (d *FakeDirectory) SetTeam(team string, states map[string]core.MembershipState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Teams[team] = states
}
