package main

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ianchen-tw/invisible-hand/core/classroom"
	"github.com/ianchen-tw/invisible-hand/core/submission"
)

// deadline strings are interpreted in the operator's local timezone unless
// they carry an explicit offset.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDeadline(s string) (time.Time, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf(
		"cannot parse deadline %q: use an ISO8601 string such as \"2006-01-02\" or \"2006-01-02 15:04:05\"", s)
}

// runEventTimes checks the listed submissions against the deadline and
// reports the late ones.
func (cli *commandLine) runEventTimes(ctx context.Context, args []string) error {
	fs := newFlagSet("event-times", cli.out)
	deadlineStr := fs.String("deadline", cli.conf.Deadline, "submission deadline (ISO8601, local timezone)")
	targetTeam := fs.String("target-team", "", "restrict the check to members of this team")
	emailTo := fs.String("email", "", "comma-separated addresses to email the report to")
	dry := fs.Bool("dry", false, "rehearse without remote writes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errHelp
	}

	deadline, err := parseDeadline(*deadlineStr)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return errors.Wrapf(err, "opening submission list %s", fs.Arg(0))
	}
	refs, err := submission.ParseRefs(f)
	f.Close()
	if err != nil {
		return err
	}

	dir := cli.dir
	if *dry {
		dir = classroom.NewDryDirectory(dir)
	} else if err := cli.ensureToken(ctx); err != nil {
		return err
	}

	var filter submission.TeamFilter
	if *targetTeam != "" {
		team, err := classroom.NewTeam(ctx, dir, *targetTeam)
		if err != nil {
			return err
		}
		filter = team
	}

	checker := submission.NewChecker(dir, cli.log, cli.conf.MaxConcurrent)
	report, err := checker.Check(ctx, refs, deadline, filter)
	if err != nil {
		return err
	}
	if err := report.Render(cli.out); err != nil {
		return err
	}

	if *emailTo != "" && !*dry {
		var to []mail.Address
		for _, addr := range strings.Split(*emailTo, ",") {
			to = append(to, mail.Address{Address: strings.TrimSpace(addr)})
		}
		msg, err := report.Email(to)
		if err != nil {
			return err
		}
		cli.mail.SendMessages(msg)
		fmt.Fprintf(cli.out, "report emailed to %s\n", *emailTo)
	}
	return nil
}
