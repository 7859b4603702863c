package classroom

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ianchen-tw/invisible-hand/core"
)

// Result partitions the requested handles after a reconciliation run. The
// partitions are mutually exclusive; their union is the requested set minus
// input-validation rejects.
type Result struct {
	AlreadyMember []string
	Pending       []string
	Invited       []string
	Failed        []string
	Invalid       []string // handles that do not exist on the platform
}

// Reconciler drives the invite workflow for one team, idempotently: a handle
// that is already a member or has a pending invite is never invited again.
type Reconciler struct {
	team          *Team
	log           core.Logger
	maxConcurrent int
}

func NewReconciler(ctx context.Context, dir core.RemoteDirectory, teamSlug string, log core.Logger, maxConcurrent int) (*Reconciler, error) {
	team, err := NewTeam(ctx, dir, teamSlug)
	if err != nil {
		return nil, err
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Reconciler{team: team, log: log, maxConcurrent: maxConcurrent}, nil
}

func (rc *Reconciler) Team() *Team { return rc.team }

// Reconcile computes the membership partitions for the requested handles and
// invites the ones not yet known to the team. Per-handle failures are
// collected, never raised; one failure does not abort the batch.
func (rc *Reconciler) Reconcile(ctx context.Context, handles []string) (Result, error) {
	requested := cleanHandles(handles)

	alreadyMember, outside := rc.partitionExistingMembers(requested)
	valid, invalid := rc.filterValidUsers(ctx, outside)
	pending, notInvited, members := rc.classifyMembership(ctx, valid)
	alreadyMember = append(alreadyMember, members...)
	invited, failed := rc.invite(ctx, notInvited)

	res := Result{
		AlreadyMember: alreadyMember,
		Pending:       pending,
		Invited:       invited,
		Failed:        failed,
		Invalid:       invalid,
	}
	res.sort()
	return res, nil
}

// partitionExistingMembers splits the requested handles against the member
// snapshot taken at construction time.
func (rc *Reconciler) partitionExistingMembers(requested []string) (member, outside []string) {
	for _, h := range requested {
		if rc.team.Contains(h) {
			member = append(member, h)
		} else {
			outside = append(outside, h)
		}
	}
	return member, outside
}

// filterValidUsers drops handles that do not exist on the platform. They are
// reported but never invited and never counted as failures.
func (rc *Reconciler) filterValidUsers(ctx context.Context, outside []string) (valid, invalid []string) {
	exists := make([]bool, len(outside))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.maxConcurrent)
	for i, h := range outside {
		i, h := i, h
		g.Go(func() error {
			ok, err := rc.team.dir.UserExists(gctx, h)
			if err != nil {
				rc.log.Warn("cannot verify platform user, skipping", map[string]interface{}{"handle": h, "err": err.Error()})
				return nil
			}
			exists[i] = ok
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	for i, h := range outside {
		if exists[i] {
			valid = append(valid, h)
		} else {
			invalid = append(invalid, h)
		}
	}
	return valid, invalid
}

// classifyMembership sorts valid outside handles by their current membership
// request state. Anything other than pending/unknown/member is reported and
// conservatively treated as not invited.
func (rc *Reconciler) classifyMembership(ctx context.Context, valid []string) (pending, notInvited, member []string) {
	states := make([]core.MembershipState, len(valid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.maxConcurrent)
	for i, h := range valid {
		i, h := i, h
		g.Go(func() error {
			state, err := rc.team.MembershipState(gctx, h)
			if err != nil {
				rc.log.Warn("cannot read membership state, assuming not invited", map[string]interface{}{"handle": h, "err": err.Error()})
				state = core.MembershipUnknown
			}
			states[i] = state
			return nil
		})
	}
	_ = g.Wait()

	for i, h := range valid {
		switch states[i] {
		case core.MembershipPending:
			pending = append(pending, h)
		case core.MembershipMember:
			// accepted between the snapshot and this check
			member = append(member, h)
		case core.MembershipUnknown:
			notInvited = append(notInvited, h)
		default:
			rc.log.Warn("unrecognized membership state, treating as not invited", map[string]interface{}{"handle": h, "state": string(states[i])})
			notInvited = append(notInvited, h)
		}
	}
	return pending, notInvited, member
}

// invite fires at most one invite call per handle; the input is already
// de-duplicated by cleanHandles.
func (rc *Reconciler) invite(ctx context.Context, notInvited []string) (invited, failed []string) {
	ok := make([]bool, len(notInvited))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.maxConcurrent)
	for i, h := range notInvited {
		i, h := i, h
		g.Go(func() error {
			if err := rc.team.Invite(gctx, h); err != nil {
				rc.log.Warn("invite failed", map[string]interface{}{"handle": h, "err": err.Error()})
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, h := range notInvited {
		if ok[i] {
			invited = append(invited, h)
		} else {
			failed = append(failed, h)
		}
	}
	return invited, failed
}

func cleanHandles(handles []string) []string {
	cleaned := make([]string, 0, len(handles))
	for _, h := range handles {
		if h = core.CleanString(h); h != "" {
			cleaned = append(cleaned, h)
		}
	}
	return core.Unique(cleaned)
}

func (r *Result) sort() {
	for _, part := range [][]string{r.AlreadyMember, r.Pending, r.Invited, r.Failed, r.Invalid} {
		sort.Strings(part)
	}
}
