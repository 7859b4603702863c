package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrRemoteNotFound is returned by RemoteDirectory implementations when the
// requested org/team/repo does not exist on the platform.
var ErrRemoteNotFound = errors.New("not found on the remote platform")

// MembershipState is the status of a user's relationship to a team.
type MembershipState string

const (
	MembershipMember  MembershipState = "member"
	MembershipPending MembershipState = "pending"
	MembershipUnknown MembershipState = "unknown"
)

const PushEventType = "PushEvent"

type (
	EventCommit struct {
		SHA     string
		Message string
	}

	// RepoEvent is one record of a repository's activity feed.
	RepoEvent struct {
		Type      string
		CreatedAt time.Time
		Actor     string
		Commits   []EventCommit
	}

	// RemoteDirectory is the platform adapter every engine talks through.
	// One production implementation (services/github) and in-memory fakes in
	// tests satisfy it. Implementations paginate fully behind each call;
	// RepoEvents yields events newest first per the platform's convention.
	RemoteDirectory interface {
		CheckToken(ctx context.Context) error
		UserExists(ctx context.Context, handle string) (bool, error)

		TeamMembers(ctx context.Context, team string) ([]string, error)
		MembershipState(ctx context.Context, team, handle string) (MembershipState, error)
		Invite(ctx context.Context, team, handle string) error
		GrantTeamRead(ctx context.Context, team, repo string) error

		RepoEvents(ctx context.Context, repo string) ([]RepoEvent, error)
		ReposWithPrefix(ctx context.Context, prefix string) ([]string, error)
		BranchExists(ctx context.Context, repo, branch string) (bool, error)
		DefaultBranch(ctx context.Context, repo string) (string, error)
		CloneURL(repo string) string

		FindIssue(ctx context.Context, repo, title string) (number int, body string, found bool, err error)
		CreateIssue(ctx context.Context, repo, title, body string) error
		ReopenIssue(ctx context.Context, repo string, number int, title, body string) error
		CreatePull(ctx context.Context, repo, title, body, head, base string) error
	}
)
