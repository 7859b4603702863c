package submission

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core"
)

var (
	// ErrCommitNotFound: no push event in the feed carries the hash. The
	// caller must treat this as "cannot verify", never as "on time".
	ErrCommitNotFound = errors.New("commit not found in the repository's push events")
	// ErrAmbiguousCommit: the short hash matched two or more commits within
	// one push event and nothing unambiguous was found. Never guess.
	ErrAmbiguousCommit = errors.New("short hash is ambiguous within a push event")
)

// CommitPushInfo is the recovered push record of one submission.
type CommitPushInfo struct {
	Repo     string
	Hash     string // short form
	PushedAt time.Time
	Message  string // first line, escaped for report embedding
}

// Resolver recovers a commit's push timestamp from the repository's activity
// feed when the platform offers no direct query for it.
type Resolver struct {
	dir core.RemoteDirectory
	log core.Logger
	loc *time.Location
}

func NewResolver(dir core.RemoteDirectory, log core.Logger) *Resolver {
	return &Resolver{dir: dir, log: log, loc: time.Local}
}

// Resolve scans the feed newest first and stops at the first push event
// holding exactly one commit whose full hash starts with shortHash. An event
// where two commits share the prefix is reported as a conflict and skipped;
// a later unambiguous event may still win.
func (r *Resolver) Resolve(ctx context.Context, repo, shortHash string) (CommitPushInfo, error) {
	events, err := r.dir.RepoEvents(ctx, repo)
	if err != nil {
		return CommitPushInfo{}, errors.Wrapf(err, "fetching events of %s", repo)
	}

	var sawConflict bool
	for _, ev := range events {
		if ev.Type != core.PushEventType {
			continue
		}
		var matches []core.EventCommit
		for _, c := range ev.Commits {
			if strings.HasPrefix(c.SHA, shortHash) {
				matches = append(matches, c)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return CommitPushInfo{
				Repo:     repo,
				Hash:     shortSHA(matches[0].SHA),
				PushedAt: ev.CreatedAt.In(r.loc),
				Message:  EscapeMessage(firstLine(matches[0].Message)),
			}, nil
		default:
			r.log.Warn("short hash conflict within push event", map[string]interface{}{
				"repo": repo, "hash": shortHash, "actor": ev.Actor,
			})
			sawConflict = true
		}
	}
	if sawConflict {
		return CommitPushInfo{}, errors.Wrapf(ErrAmbiguousCommit, "%s:%s", repo, shortHash)
	}
	return CommitPushInfo{}, errors.Wrapf(ErrCommitNotFound, "%s:%s", repo, shortHash)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(msg string) string {
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		return msg[:i]
	}
	return msg
}
