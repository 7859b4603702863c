package logsvc

import (
	"log"

	"github.com/ianchen-tw/invisible-hand/core"
)

// ConsoleLogger writes everything to a std logger; the workhorse for local runs.
type ConsoleLogger struct {
	std     *log.Logger
	enabled bool
	debug   bool
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger, debug bool) *ConsoleLogger {
	return &ConsoleLogger{std: std, enabled: true, debug: debug}
}

func (l *ConsoleLogger) Enable(enabled bool) { l.enabled = enabled }

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.enabled && l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	if l.enabled {
		l.print("INFO", msg, args)
	}
}

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	if l.enabled {
		l.print("WARN", msg, args)
	}
}

func (l *ConsoleLogger) Error(msg string, err error, args ...interface{}) {
	if l.enabled {
		l.print("ERROR", msg, append(args, err))
	}
}

func (l *ConsoleLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		l.std.Printf("  %+v", arg)
	}
}
