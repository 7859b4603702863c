package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"

	"github.com/ianchen-tw/invisible-hand/core"
)

// RollbarLogger mirrors ConsoleLogger locally and ships warnings/errors to
// rollbar. Used when Config.RollbarToken is set.
type RollbarLogger struct {
	console *ConsoleLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.AppName)
	return &RollbarLogger{console: NewConsoleLogger(std, conf.Debug)}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
	l.console.Enable(enabled)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.console.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.console.Info(msg, args...)
	rollbar.Info(append([]interface{}{msg}, args...)...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.console.Warn(msg, args...)
	rollbar.Warning(append([]interface{}{msg}, args...)...)
}

func (l *RollbarLogger) Error(msg string, err error, args ...interface{}) {
	l.console.Error(msg, err, args...)
	rollbar.Error(append([]interface{}{msg, err}, args...)...)
}

// Close flushes queued rollbar payloads; call before process exit.
func (l *RollbarLogger) Close() error {
	rollbar.Wait()
	return nil
}
