package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ianchen-tw/invisible-hand/core/classroom"
)

// runAddStudents reconciles the requested handles against the student team
// and invites the ones the platform does not know about yet.
func (cli *commandLine) runAddStudents(ctx context.Context, args []string) error {
	fs := newFlagSet("add-students", cli.out)
	team := fs.String("team", cli.conf.StudentTeamSlug, "team slug to invite students into")
	dry := fs.Bool("dry", false, "rehearse without touching the remote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	handles := fs.Args()
	if len(handles) == 0 || *team == "" {
		fs.Usage()
		return errHelp
	}

	dir := cli.dir
	if *dry {
		dir = classroom.NewDryDirectory(dir)
	} else if err := cli.ensureToken(ctx); err != nil {
		return err
	}

	rc, err := classroom.NewReconciler(ctx, dir, *team, cli.log, cli.conf.MaxConcurrent)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "target team: %s (%d members)\n", *team, rc.Team().Len())

	res, err := rc.Reconcile(ctx, handles)
	if err != nil {
		return err
	}
	cli.printReconcileResult(res, *dry)
	return nil
}

func (cli *commandLine) printReconcileResult(res classroom.Result, dry bool) {
	if dry {
		fmt.Fprintln(cli.out, "DRY RUN: no invite was sent")
	}
	printPartition(cli.out, "already members", res.AlreadyMember)
	printPartition(cli.out, "already pending", res.Pending)
	printPartition(cli.out, "invited", res.Invited)
	printPartition(cli.out, "failed to invite", res.Failed)
	printPartition(cli.out, "not platform users", res.Invalid)
}

func printPartition(out io.Writer, label string, handles []string) {
	fmt.Fprintf(out, "%s (total: %d)", label, len(handles))
	if len(handles) > 0 {
		fmt.Fprintf(out, ": %s", strings.Join(handles, ", "))
	}
	fmt.Fprintln(out)
}
