package patchwork

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core"
)

var (
	ErrPatchBranchMissing   = errors.New("patch branch does not exist on the source repo")
	ErrIssueTemplateMissing = errors.New("no issue template with the patch branch's title on the source repo")
)

// Status of one student repo after a patching run.
type Status string

const (
	StatusPatched   Status = "patched"
	StatusSkipped   Status = "skipped"   // patch branch already on the remote
	StatusUnchanged Status = "unchanged" // patch produced no diff
	StatusFailed    Status = "failed"
)

type (
	Outcome struct {
		Repo   string
		Status Status
		Reason string
	}

	Options struct {
		HwPrefix    string
		PatchBranch string
		SourceRepo  string // defaults to tmpl-<hw-prefix>-revise
		OnlyRepo    string
		WorkDir     string // scratch space for clones
		DryRun      bool
	}

	// Patcher distributes a template fix into every student homework repo as
	// a branch plus a pull request.
	Patcher struct {
		dir core.RemoteDirectory
		git GitClient
		log core.Logger
	}
)

func NewPatcher(dir core.RemoteDirectory, git GitClient, log core.Logger) *Patcher {
	return &Patcher{dir: dir, git: git, log: log}
}

// Run validates the source side fail-fast, then walks the student repos one
// by one; a failing repo is recorded and never aborts the rest.
func (p *Patcher) Run(ctx context.Context, opts Options) ([]Outcome, error) {
	if opts.SourceRepo == "" {
		opts.SourceRepo = fmt.Sprintf("tmpl-%s-revise", opts.HwPrefix)
	}

	ok, err := p.dir.BranchExists(ctx, opts.SourceRepo, opts.PatchBranch)
	if err != nil {
		return nil, errors.Wrapf(err, "checking branch %s on %s", opts.PatchBranch, opts.SourceRepo)
	}
	if !ok {
		return nil, errors.Wrapf(ErrPatchBranchMissing, "%s on %s", opts.PatchBranch, opts.SourceRepo)
	}

	// The PR body comes from the source-repo issue titled like the branch.
	_, prBody, found, err := p.dir.FindIssue(ctx, opts.SourceRepo, opts.PatchBranch)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching issue template on %s", opts.SourceRepo)
	}
	if !found {
		return nil, errors.Wrapf(ErrIssueTemplateMissing, "%q on %s", opts.PatchBranch, opts.SourceRepo)
	}

	repos, err := p.targetRepos(ctx, opts)
	if err != nil {
		return nil, err
	}

	srcDir, changes, err := p.prepareSource(ctx, opts)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(repos))
	for _, repo := range repos {
		outcomes = append(outcomes, p.patchRepo(ctx, opts, repo, srcDir, changes, prBody))
	}
	return outcomes, nil
}

func (p *Patcher) targetRepos(ctx context.Context, opts Options) ([]string, error) {
	if opts.OnlyRepo != "" {
		return []string{opts.OnlyRepo}, nil
	}
	repos, err := p.dir.ReposWithPrefix(ctx, opts.HwPrefix+"-")
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s-* repos", opts.HwPrefix)
	}
	return repos, nil
}

// prepareSource clones the template repo, checks out the patch branch and
// computes the file set the patch touches relative to the default branch.
func (p *Patcher) prepareSource(ctx context.Context, opts Options) (string, []Change, error) {
	if err := p.git.Clone(ctx, p.dir.CloneURL(opts.SourceRepo), opts.WorkDir, "source_repo", false); err != nil {
		return "", nil, errors.Wrapf(err, "cloning %s", opts.SourceRepo)
	}
	srcDir := filepath.Join(opts.WorkDir, "source_repo")
	if err := p.git.Checkout(ctx, srcDir, opts.PatchBranch, false); err != nil {
		return "", nil, errors.Wrapf(err, "checking out %s", opts.PatchBranch)
	}
	base, err := p.dir.DefaultBranch(ctx, opts.SourceRepo)
	if err != nil {
		return "", nil, errors.Wrapf(err, "resolving default branch of %s", opts.SourceRepo)
	}
	changes, err := p.git.DiffNameStatus(ctx, srcDir, base, opts.PatchBranch)
	if err != nil {
		return "", nil, errors.Wrap(err, "diffing patch branch")
	}
	return srcDir, changes, nil
}

func (p *Patcher) patchRepo(ctx context.Context, opts Options, repo, srcDir string, changes []Change, prBody string) Outcome {
	fail := func(reason string, err error) Outcome {
		p.log.Warn("patching failed", map[string]interface{}{"repo": repo, "reason": reason, "err": err.Error()})
		return Outcome{Repo: repo, Status: StatusFailed, Reason: reason}
	}

	// already patched on a previous run
	exists, err := p.dir.BranchExists(ctx, repo, opts.PatchBranch)
	if err != nil {
		return fail("checking remote branch", err)
	}
	if exists {
		return Outcome{Repo: repo, Status: StatusSkipped, Reason: "already patched"}
	}

	if opts.DryRun {
		return Outcome{Repo: repo, Status: StatusPatched, Reason: "dry run"}
	}

	studentsDir := filepath.Join(opts.WorkDir, "student_repos")
	if err := os.MkdirAll(studentsDir, 0o755); err != nil {
		return fail("creating scratch dir", err)
	}
	if err := p.git.Clone(ctx, p.dir.CloneURL(repo), studentsDir, repo, true); err != nil {
		return fail("cloning", err)
	}
	repoDir := filepath.Join(studentsDir, repo)
	if err := p.git.Checkout(ctx, repoDir, opts.PatchBranch, true); err != nil {
		return fail("branching", err)
	}

	if err := applyChanges(srcDir, repoDir, changes); err != nil {
		return fail("applying changes", err)
	}
	if err := p.git.AddAll(ctx, repoDir); err != nil {
		return fail("staging", err)
	}
	staged, err := p.git.HasStagedChanges(ctx, repoDir)
	if err != nil {
		return fail("checking staged changes", err)
	}
	if !staged {
		return Outcome{Repo: repo, Status: StatusUnchanged, Reason: "repo already carries the patch content"}
	}
	if err := p.git.Commit(ctx, repoDir, fmt.Sprintf("Patch: %s", opts.PatchBranch)); err != nil {
		return fail("committing", err)
	}
	if err := p.git.Push(ctx, repoDir, opts.PatchBranch); err != nil {
		return fail("pushing patch branch", err)
	}

	base, err := p.dir.DefaultBranch(ctx, repo)
	if err != nil {
		return fail("resolving default branch", err)
	}
	title := fmt.Sprintf("[PATCH] %s", opts.PatchBranch)
	if err := p.dir.CreatePull(ctx, repo, title, prBody, opts.PatchBranch, base); err != nil {
		return fail("creating pull request", err)
	}
	return Outcome{Repo: repo, Status: StatusPatched}
}

// applyChanges copies every touched file from the source checkout into the
// student checkout and removes files the patch deleted or renamed away.
func applyChanges(srcDir, dstDir string, changes []Change) error {
	for _, ch := range changes {
		dst := filepath.Join(dstDir, ch.Path)
		if ch.Removed {
			if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := copyFile(filepath.Join(srcDir, ch.Path), dst); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
