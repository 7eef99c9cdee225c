package log

import "github.com/robfig/cron/v3"

// cronLogger routes robfig/cron's internal logging through this package.
// cron reports every schedule/wake at info, which is far too chatty for a
// one second tick, so those go to debug.
type cronLogger struct{}

// Cron returns a cron.Logger backed by the global logger.
func Cron() cron.Logger { return cronLogger{} }

func (cronLogger) Info(msg string, kv ...interface{}) {
	Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	Error("cron: "+msg, err, kv...)
}
