package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/ianchen-tw/invisible-hand/core"
	"github.com/ianchen-tw/invisible-hand/services/email"
	"github.com/ianchen-tw/invisible-hand/services/github"
	"github.com/ianchen-tw/invisible-hand/services/logger"
)

func main() {
	std := log.New(os.Stderr, "hand ", log.LstdFlags)

	wd, err := os.Getwd()
	if err != nil {
		std.Fatal(err)
	}
	core.InitValidators()
	conf, err := core.LoadConfig(wd)
	if err != nil {
		std.Fatalf("%v", err)
	}
	if err := conf.Validate(); err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			for _, fld := range vErr.Fields {
				std.Printf("config: %s: %s", fld.Field, fld.Error)
			}
		}
		std.Fatalf("%v", err)
	}

	var logSvc core.Logger
	if conf.RollbarToken != "" {
		rl := logsvc.NewRollbarLogger(std, conf)
		defer rl.Close()
		logSvc = rl
	} else {
		logSvc = logsvc.NewConsoleLogger(std, conf.Debug)
	}

	var mailSvc core.EmailService
	if conf.SendgridAPIKey != "" {
		mailSvc = emailsvc.NewSendgridService(conf)
	} else {
		mailSvc = emailsvc.NewConsoleService(conf)
	}

	ctx := context.Background()
	cli := &commandLine{
		conf: conf,
		log:  logSvc,
		dir:  githubsvc.NewDirectory(conf),
		mail: mailSvc,
		out:  os.Stdout,
		in:   os.Stdin,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			std.Printf("%v", err)
		}
		os.Exit(1)
	}
}
