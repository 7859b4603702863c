package submission

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ianchen-tw/invisible-hand/core"
)

// homework repos are named <hw-prefix>-<handle>; stripping the prefix yields
// the student's platform handle.
var hwPrefixRegex = regexp.MustCompile(`^hw\d+-`)

type (
	// Verdict is one late submission: how late, and the push record backing
	// the claim.
	Verdict struct {
		Ref  RepoCommitRef
		Info CommitPushInfo
		Late time.Duration
	}

	// LateReport aggregates one checking run. Only late submissions are
	// itemized; on-time ones are counted. Skipped and Ambiguous refs could
	// not be given a verdict and must be chased by hand.
	LateReport struct {
		RunID     string
		Deadline  time.Time
		Total     int
		OnTime    int
		Late      []Verdict
		Skipped   []RepoCommitRef
		Ambiguous []RepoCommitRef
	}

	// TeamFilter restricts a run to current members of a team.
	// *classroom.Team satisfies it.
	TeamFilter interface {
		Contains(handle string) bool
	}

	// Checker resolves each submission's push time and evaluates it against
	// the deadline, fanning out across repositories.
	Checker struct {
		resolver      *Resolver
		log           core.Logger
		maxConcurrent int
	}
)

func NewChecker(dir core.RemoteDirectory, log core.Logger, maxConcurrent int) *Checker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Checker{resolver: NewResolver(dir, log), log: log, maxConcurrent: maxConcurrent}
}

// Check builds the late-submission report for refs against deadline. A nil
// filter checks every ref; otherwise refs whose derived handle is not a team
// member are dropped before any lookup. Per-ref failures never abort the
// batch: unresolvable refs are skipped with a warning, ambiguous ones are
// itemized as conflicts.
func (c *Checker) Check(ctx context.Context, refs []RepoCommitRef, deadline time.Time, filter TeamFilter) (*LateReport, error) {
	if filter != nil {
		kept := make([]RepoCommitRef, 0, len(refs))
		for _, ref := range refs {
			handle := hwPrefixRegex.ReplaceAllString(ref.Repo, "")
			if filter.Contains(handle) {
				kept = append(kept, ref)
			}
		}
		refs = kept
	}

	type outcome struct {
		info CommitPushInfo
		err  error
	}
	outcomes := make([]outcome, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			info, err := c.resolver.Resolve(gctx, ref.Repo, ref.Hash)
			outcomes[i] = outcome{info: info, err: err}
			return nil
		})
	}
	_ = g.Wait() // workers record their outcome instead of failing the group

	report := &LateReport{
		RunID:    uuid.New().String(),
		Deadline: deadline,
		Total:    len(refs),
	}
	for i, ref := range refs {
		out := outcomes[i]
		switch {
		case errors.Is(out.err, ErrAmbiguousCommit):
			report.Ambiguous = append(report.Ambiguous, ref)
		case out.err != nil:
			c.log.Warn("cannot verify submission, skipping", map[string]interface{}{
				"repo": ref.Repo, "hash": ref.Hash, "err": out.err.Error(),
			})
			report.Skipped = append(report.Skipped, ref)
		default:
			if late := Lateness(deadline, out.info.PushedAt); late != nil {
				report.Late = append(report.Late, Verdict{Ref: ref, Info: out.info, Late: *late})
			} else {
				report.OnTime++
			}
		}
	}
	sort.Slice(report.Late, func(i, j int) bool { return report.Late[i].Ref.Repo < report.Late[j].Ref.Repo })
	return report, nil
}

// Render writes the human-readable report.
func (r *LateReport) Render(w io.Writer) error {
	fmt.Fprintf(w, "==================== REPORT ====================\n")
	fmt.Fprintf(w, "run: %s\n", r.RunID)
	fmt.Fprintf(w, "deadline: %s\n", r.Deadline.Format(time.RFC3339))
	fmt.Fprintf(w, "total submissions: %d\n", r.Total)
	fmt.Fprintf(w, "on time: %d\n", r.OnTime)
	fmt.Fprintf(w, "late submissions: %d\n", len(r.Late))

	if len(r.Late) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "REPO\tCOMMIT\tPUSHED\tLATE BY\tMESSAGE")
		for _, v := range r.Late {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				v.Ref.Repo, v.Info.Hash, v.Info.PushedAt.Format(time.RFC3339), v.Late, v.Info.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	for _, ref := range r.Skipped {
		fmt.Fprintf(w, "skipped (cannot verify): %s:%s\n", ref.Repo, ref.Hash)
	}
	for _, ref := range r.Ambiguous {
		fmt.Fprintf(w, "conflict (ambiguous short hash): %s:%s\n", ref.Repo, ref.Hash)
	}
	return nil
}

// Email wraps the rendered report in a message for the given recipients.
func (r *LateReport) Email(to []mail.Address) (*core.EmailMessage, error) {
	var body strings.Builder
	if err := r.Render(&body); err != nil {
		return nil, err
	}
	return &core.EmailMessage{
		To:          to,
		Subject:     fmt.Sprintf("Late submissions for deadline %s", r.Deadline.Format("2006-01-02")),
		TextContent: body.String(),
	}, nil
}
