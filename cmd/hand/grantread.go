package main

import (
	"context"
	"fmt"

	"github.com/ianchen-tw/invisible-hand/core/classroom"
)

// runGrantReadAccess subscribes the reader (TA) team to every homework repo
// so graders can see student work.
func (cli *commandLine) runGrantReadAccess(ctx context.Context, args []string) error {
	fs := newFlagSet("grant-read-access", cli.out)
	team := fs.String("team", cli.conf.ReaderTeamSlug, "reader team slug")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *team == "" {
		fs.Usage()
		return errHelp
	}
	hwPrefix := fs.Arg(0)

	if err := cli.ensureToken(ctx); err != nil {
		return err
	}

	readerTeam, err := classroom.NewTeam(ctx, cli.dir, *team)
	if err != nil {
		return err
	}
	repos, err := cli.dir.ReposWithPrefix(ctx, hwPrefix+"-")
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "granting %s read access on %d repos\n", *team, len(repos))

	res := classroom.GrantReadAccess(ctx, readerTeam, repos, cli.log, cli.conf.MaxConcurrent)
	printPartition(cli.out, "granted", res.Granted)
	printPartition(cli.out, "failed", res.Failed)
	return nil
}
