package feedback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ianchen-tw/invisible-hand/core"
	"github.com/ianchen-tw/invisible-hand/core/roster"
)

// Feedback is one student's rendered grade report, addressed to their
// homework repository.
type Feedback struct {
	Repo string
	Body string
}

// RepoName derives a student's homework repository name.
func RepoName(hwPrefix, handle string) string {
	return fmt.Sprintf("%s-%s", hwPrefix, handle)
}

// IssueTitle is the title grade issues are filed (and later found) under.
func IssueTitle(hwPrefix string) string {
	return fmt.Sprintf("Grade for %s", hwPrefix)
}

// Generator renders per-student feedback by substituting joined roster
// columns into the student's template file.
type Generator struct {
	roster *roster.Service
}

func NewGenerator(rosterSvc *roster.Service) *Generator {
	return &Generator{roster: rosterSvc}
}

// Generate joins the roster with the homework sheet and renders
// <templateDir>/<student_id>.md for every matched student that has one.
// A non-empty onlyIDs narrows the run to those students before any template
// is read. Unknown ${vars} are left in place rather than erased, so a
// template typo stays visible in the published issue.
func (g *Generator) Generate(ctx context.Context, hwPrefix, templateDir string, onlyIDs ...string) ([]Feedback, error) {
	records, err := g.roster.LeftJoin(ctx, hwPrefix)
	if err != nil {
		return nil, err
	}

	var only map[string]struct{}
	if len(onlyIDs) > 0 {
		only = make(map[string]struct{}, len(onlyIDs))
		for _, id := range onlyIDs {
			only[id] = struct{}{}
		}
	}

	var fbs []Feedback
	for _, rec := range records {
		id, handle := rec["student_id"], rec["github_handle"]
		if only != nil {
			if _, ok := only[id]; !ok {
				continue
			}
		}
		tmplPath := filepath.Join(templateDir, id+".md")
		raw, err := os.ReadFile(tmplPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading feedback template for %s", id)
		}
		fbs = append(fbs, Feedback{
			Repo: RepoName(hwPrefix, handle),
			Body: substitute(string(raw), rec),
		})
	}
	sort.Slice(fbs, func(i, j int) bool { return fbs[i].Repo < fbs[j].Repo })
	return fbs, nil
}

func substitute(tmpl string, vars map[string]string) string {
	return os.Expand(tmpl, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return "${" + key + "}"
	})
}

// PublishResult partitions repos after a publishing run.
type PublishResult struct {
	Published []string
	Failed    []string
}

// Publisher files one grade issue per homework repo: an existing issue with
// the same title is reopened and updated, otherwise a new one is created.
type Publisher struct {
	dir           core.RemoteDirectory
	log           core.Logger
	maxConcurrent int
}

func NewPublisher(dir core.RemoteDirectory, log core.Logger, maxConcurrent int) *Publisher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Publisher{dir: dir, log: log, maxConcurrent: maxConcurrent}
}

// Publish fans out across repos; one repo's failure never aborts siblings.
func (p *Publisher) Publish(ctx context.Context, title string, fbs []Feedback) PublishResult {
	ok := make([]bool, len(fbs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)
	for i, fb := range fbs {
		i, fb := i, fb
		g.Go(func() error {
			if err := p.publishOne(gctx, title, fb); err != nil {
				p.log.Warn("publishing feedback failed", map[string]interface{}{"repo": fb.Repo, "err": err.Error()})
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var res PublishResult
	for i, fb := range fbs {
		if ok[i] {
			res.Published = append(res.Published, fb.Repo)
		} else {
			res.Failed = append(res.Failed, fb.Repo)
		}
	}
	sort.Strings(res.Published)
	sort.Strings(res.Failed)
	return res
}

func (p *Publisher) publishOne(ctx context.Context, title string, fb Feedback) error {
	number, _, found, err := p.dir.FindIssue(ctx, fb.Repo, title)
	if err != nil {
		return err
	}
	if found {
		return p.dir.ReopenIssue(ctx, fb.Repo, number, title, fb.Body)
	}
	return p.dir.CreateIssue(ctx, fb.Repo, title, fb.Body)
}
