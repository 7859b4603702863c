package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core/feedback"
	"github.com/ianchen-tw/invisible-hand/core/roster"
	gitsvc "github.com/ianchen-tw/invisible-hand/services/git"
	gsheetsvc "github.com/ianchen-tw/invisible-hand/services/gsheet"
)

// newRosterService is swapped out in tests to avoid the spreadsheet backend.
var newRosterService = func(ctx context.Context, cli *commandLine) (*roster.Service, error) {
	src, err := gsheetsvc.NewSource(ctx, cli.conf)
	if err != nil {
		return nil, err
	}
	return roster.NewService(src), nil
}

// runAnnounceGrade renders per-student feedback from the graded worksheet and
// publishes it as one issue per homework repo.
func (cli *commandLine) runAnnounceGrade(ctx context.Context, args []string) error {
	fs := newFlagSet("announce-grade", cli.out)
	sourceRepo := fs.String("feedback-source-repo", cli.conf.FeedbackSourceRepo, "repo holding the feedback templates")
	onlyID := fs.String("only-id", "", "only student id to announce")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	dry := fs.Bool("dry", false, "print targets without publishing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *sourceRepo == "" {
		fs.Usage()
		return errHelp
	}
	hwPrefix := fs.Arg(0)

	if err := cli.ensureToken(ctx); err != nil {
		return err
	}

	rosterSvc, err := newRosterService(ctx, cli)
	if err != nil {
		return err
	}

	// the templates live in <source-repo>/<hw-prefix>/reports/<student_id>.md
	git, err := gitsvc.NewClient()
	if err != nil {
		return err
	}
	workDir, err := os.MkdirTemp(".", "feedback-tmp-")
	if err != nil {
		return errors.Wrap(err, "creating scratch dir")
	}
	defer os.RemoveAll(workDir)
	if err := git.Clone(ctx, cli.dir.CloneURL(*sourceRepo), workDir, "feedbacks", true); err != nil {
		return errors.Wrapf(err, "cloning feedback source repo %s", *sourceRepo)
	}
	templateDir := filepath.Join(workDir, "feedbacks", hwPrefix, "reports")

	// narrow before generation so only the requested template is read
	var onlyIDs []string
	if *onlyID != "" {
		if _, err := rosterSvc.Get(ctx, *onlyID); err != nil {
			return err
		}
		onlyIDs = append(onlyIDs, *onlyID)
	}

	gen := feedback.NewGenerator(rosterSvc)
	fbs, err := gen.Generate(ctx, hwPrefix, templateDir, onlyIDs...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "repos to announce grade (%d):\n", len(fbs))
	for _, fb := range fbs {
		fmt.Fprintf(cli.out, "  %s\n", fb.Repo)
	}
	if *dry {
		fmt.Fprintln(cli.out, "DRY RUN: skip publishing to the remote")
		return nil
	}
	if !*yes && !cli.confirm("Do you want to continue?") {
		fmt.Fprintln(cli.out, "publishing refused")
		return nil
	}

	pub := feedback.NewPublisher(cli.dir, cli.log, cli.conf.MaxConcurrent)
	res := pub.Publish(ctx, feedback.IssueTitle(hwPrefix), fbs)
	printPartition(cli.out, "published", res.Published)
	printPartition(cli.out, "failed", res.Failed)
	return nil
}

func (cli *commandLine) confirm(prompt string) bool {
	fmt.Fprintf(cli.out, "%s [y/N] ", prompt)
	sc := bufio.NewScanner(cli.in)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}
