package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/ianchen-tw/invisible-hand/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	log  core.Logger
	dir  core.RemoteDirectory
	mail core.EmailService
	out  io.Writer
	in   io.Reader
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  add-students HANDLE... [-team SLUG] [-dry] - invite students into the team")
	fmt.Fprintln(cli.out, "  event-times INPUT_FILE [-deadline TIME] [-target-team SLUG] [-email ADDR] [-dry] - detect late submissions")
	fmt.Fprintln(cli.out, "  grant-read-access HW_PREFIX [-team SLUG] - subscribe the reader team to homework repos")
	fmt.Fprintln(cli.out, "  patch-project HW_PREFIX PATCH_BRANCH [-source-repo REPO] [-only-repo REPO] [-dry] - distribute a template fix")
	fmt.Fprintln(cli.out, "  announce-grade HW_PREFIX [-feedback-source-repo REPO] [-only-id ID] [-yes] [-dry] - publish grade feedback issues")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "add-students":
		return cli.runAddStudents(ctx, args[2:])
	case "event-times":
		return cli.runEventTimes(ctx, args[2:])
	case "grant-read-access":
		return cli.runGrantReadAccess(ctx, args[2:])
	case "patch-project":
		return cli.runPatchProject(ctx, args[2:])
	case "announce-grade":
		return cli.runAnnounceGrade(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

// ensureToken makes sure a token is present (prompting once if not) and that
// the platform accepts it, before any command work starts.
func (cli *commandLine) ensureToken(ctx context.Context) error {
	if cli.conf.GithubToken == "" {
		fmt.Fprint(cli.out, "Enter access token:")
		tok, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(tok) == 0 {
			return errors.New("an access token is required; set githubToken in config or HAND_GITHUBTOKEN")
		}
		cli.conf.GithubToken = string(tok)
	}
	if err := cli.dir.CheckToken(ctx); err != nil {
		return errors.Wrap(err, "the configured access token was rejected by the platform")
	}
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
