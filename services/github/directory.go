package githubsvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/ianchen-tw/invisible-hand/core"
)

const perPage = 100

// Directory is the production RemoteDirectory over the GitHub REST API.
// Every call paginates fully and carries the configured per-request timeout;
// a timeout is a per-item failure for the engines, never a fatal error.
type Directory struct {
	client  *github.Client
	org     string
	timeout time.Duration
}

var _ core.RemoteDirectory = (*Directory)(nil)

// tokenSource re-reads the configured token on every request, so a token
// prompted after the client is built still reaches the wire.
type tokenSource struct {
	conf *core.Config
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: ts.conf.GithubToken}, nil
}

func NewDirectory(conf *core.Config) *Directory {
	httpClient := &http.Client{Transport: &oauth2.Transport{Source: tokenSource{conf: conf}}}
	return &Directory{
		client:  github.NewClient(httpClient),
		org:     conf.Organization,
		timeout: conf.RequestTimeout,
	}
}

func (d *Directory) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// CheckToken verifies the token can see the authenticated user before any
// command work starts.
func (d *Directory) CheckToken(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	if _, _, err := d.client.Users.Get(ctx, ""); err != nil {
		return errors.Wrap(err, "github token rejected")
	}
	return nil
}

func (d *Directory) UserExists(ctx context.Context, handle string) (bool, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	_, _, err := d.client.Users.Get(ctx, handle)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "looking up user %s", handle)
	}
	return true, nil
}

func (d *Directory) TeamMembers(ctx context.Context, team string) ([]string, error) {
	var members []string
	opts := &github.TeamListTeamMembersOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		ctx2, cancel := d.withTimeout(ctx)
		users, resp, err := d.client.Teams.ListTeamMembersBySlug(ctx2, d.org, team, opts)
		cancel()
		if isNotFound(err) {
			return nil, errors.Wrapf(core.ErrRemoteNotFound, "team %s/%s", d.org, team)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "listing members of %s", team)
		}
		for _, u := range users {
			members = append(members, u.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return members, nil
}

func (d *Directory) MembershipState(ctx context.Context, team, handle string) (core.MembershipState, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	membership, _, err := d.client.Teams.GetTeamMembershipBySlug(ctx, d.org, team, handle)
	if isNotFound(err) {
		return core.MembershipUnknown, nil
	}
	if err != nil {
		return core.MembershipUnknown, errors.Wrapf(err, "membership of %s in %s", handle, team)
	}
	switch membership.GetState() {
	case "active":
		return core.MembershipMember, nil
	case "pending":
		return core.MembershipPending, nil
	default:
		// surface the raw platform value; the reconciler reports it
		return core.MembershipState(membership.GetState()), nil
	}
}

func (d *Directory) Invite(ctx context.Context, team, handle string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	_, _, err := d.client.Teams.AddTeamMembershipBySlug(ctx, d.org, team, handle, nil)
	return errors.Wrapf(err, "inviting %s to %s", handle, team)
}

func (d *Directory) GrantTeamRead(ctx context.Context, team, repo string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	opts := &github.TeamAddTeamRepoOptions{Permission: "pull"}
	_, err := d.client.Teams.AddTeamRepoBySlug(ctx, d.org, team, d.org, repo, opts)
	return errors.Wrapf(err, "granting %s read on %s", team, repo)
}

func (d *Directory) RepoEvents(ctx context.Context, repo string) ([]core.RepoEvent, error) {
	var events []core.RepoEvent
	opts := &github.ListOptions{PerPage: perPage}
	for {
		ctx2, cancel := d.withTimeout(ctx)
		page, resp, err := d.client.Activity.ListRepositoryEvents(ctx2, d.org, repo, opts)
		cancel()
		if isNotFound(err) {
			return nil, errors.Wrapf(core.ErrRemoteNotFound, "repo %s/%s", d.org, repo)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "listing events of %s", repo)
		}
		for _, ev := range page {
			events = append(events, convertEvent(ev))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return events, nil
}

func convertEvent(ev *github.Event) core.RepoEvent {
	out := core.RepoEvent{
		Type:      ev.GetType(),
		CreatedAt: ev.GetCreatedAt().Time,
		Actor:     ev.GetActor().GetLogin(),
	}
	if out.Type != core.PushEventType {
		return out
	}
	payload, err := ev.ParsePayload()
	if err != nil {
		return out
	}
	if push, ok := payload.(*github.PushEvent); ok {
		for _, c := range push.Commits {
			out.Commits = append(out.Commits, core.EventCommit{SHA: c.GetSHA(), Message: c.GetMessage()})
		}
	}
	return out
}

func (d *Directory) ReposWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var repos []string
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		ctx2, cancel := d.withTimeout(ctx)
		page, resp, err := d.client.Repositories.ListByOrg(ctx2, d.org, opts)
		cancel()
		if err != nil {
			return nil, errors.Wrapf(err, "listing repos of %s", d.org)
		}
		for _, r := range page {
			if strings.HasPrefix(r.GetName(), prefix) {
				repos = append(repos, r.GetName())
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

func (d *Directory) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	_, _, err := d.client.Git.GetRef(ctx, d.org, repo, "refs/heads/"+branch)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "checking branch %s on %s", branch, repo)
	}
	return true, nil
}

func (d *Directory) DefaultBranch(ctx context.Context, repo string) (string, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	r, _, err := d.client.Repositories.Get(ctx, d.org, repo)
	if err != nil {
		return "", errors.Wrapf(err, "fetching repo %s", repo)
	}
	return r.GetDefaultBranch(), nil
}

func (d *Directory) CloneURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", d.org, repo)
}

func (d *Directory) FindIssue(ctx context.Context, repo, title string) (int, string, bool, error) {
	title = strings.TrimSpace(title)
	opts := &github.IssueListByRepoOptions{State: "all", ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		ctx2, cancel := d.withTimeout(ctx)
		issues, resp, err := d.client.Issues.ListByRepo(ctx2, d.org, repo, opts)
		cancel()
		if err != nil {
			return 0, "", false, errors.Wrapf(err, "listing issues of %s", repo)
		}
		for _, is := range issues {
			if strings.TrimSpace(is.GetTitle()) == title {
				return is.GetNumber(), is.GetBody(), true, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return 0, "", false, nil
}

func (d *Directory) CreateIssue(ctx context.Context, repo, title, body string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	req := &github.IssueRequest{Title: &title, Body: &body}
	_, _, err := d.client.Issues.Create(ctx, d.org, repo, req)
	return errors.Wrapf(err, "creating issue on %s", repo)
}

func (d *Directory) ReopenIssue(ctx context.Context, repo string, number int, title, body string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	state := "open"
	req := &github.IssueRequest{Title: &title, Body: &body, State: &state}
	_, _, err := d.client.Issues.Edit(ctx, d.org, repo, number, req)
	return errors.Wrapf(err, "updating issue #%d on %s", number, repo)
}

func (d *Directory) CreatePull(ctx context.Context, repo, title, body, head, base string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	req := &github.NewPullRequest{Title: &title, Body: &body, Head: &head, Base: &base}
	_, _, err := d.client.PullRequests.Create(ctx, d.org, repo, req)
	return errors.Wrapf(err, "creating pull request on %s", repo)
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == 404
}
