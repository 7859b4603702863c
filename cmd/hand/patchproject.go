package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core/patchwork"
	gitsvc "github.com/ianchen-tw/invisible-hand/services/git"
)

// runPatchProject distributes a template fix into every student homework
// repo as a branch plus a pull request.
func (cli *commandLine) runPatchProject(ctx context.Context, args []string) error {
	fs := newFlagSet("patch-project", cli.out)
	sourceRepo := fs.String("source-repo", "", "patch source repo (default tmpl-HW_PREFIX-revise)")
	onlyRepo := fs.String("only-repo", "", "only repo to patch")
	dry := fs.Bool("dry", false, "report what would be patched without pushing anything")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errHelp
	}

	if err := cli.ensureToken(ctx); err != nil {
		return err
	}

	git, err := gitsvc.NewClient()
	if err != nil {
		return err
	}
	workDir, err := os.MkdirTemp(".", "patch-"+fs.Arg(1)+"-")
	if err != nil {
		return errors.Wrap(err, "creating scratch dir")
	}
	defer os.RemoveAll(workDir)

	patcher := patchwork.NewPatcher(cli.dir, git, cli.log)
	outcomes, err := patcher.Run(ctx, patchwork.Options{
		HwPrefix:    fs.Arg(0),
		PatchBranch: fs.Arg(1),
		SourceRepo:  *sourceRepo,
		OnlyRepo:    *onlyRepo,
		WorkDir:     workDir,
		DryRun:      *dry,
	})
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Reason != "" {
			fmt.Fprintf(cli.out, "%-10s %s (%s)\n", o.Status, o.Repo, o.Reason)
		} else {
			fmt.Fprintf(cli.out, "%-10s %s\n", o.Status, o.Repo)
		}
	}
	return nil
}
