package logsvc

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/courseware/core"
)

// RollbarLogger writes structured logs through zap and reports them to Rollbar when enabled.
// Each logger owns its Rollbar client; enabling one never affects another.
type RollbarLogger struct {
	zl      *zap.Logger
	rb      *rollbar.Client
	enabled bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rb := rollbar.NewAsync(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Address, "")
	rb.SetStackTracer(errors.StackTracer)
	rb.SetEnabled(false) // until Enable
	return &RollbarLogger{zl: zl, rb: rb}
}

// NewZap builds the zap logger: human readable in debug, JSON otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	if conf.TestMode {
		return zap.NewNop(), nil
	}
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.enabled = enabled
	l.rb.SetEnabled(enabled)
}

func (l *RollbarLogger) Enabled() bool {
	return l.enabled
}

func (l *RollbarLogger) Sync() error {
	l.rb.Wait()
	return l.zl.Sync()
}

func (l *RollbarLogger) report(level string, r rbItem) {
	if r.err != nil {
		l.rb.ErrorWithStackSkipWithExtras(level, r.err, 3, r.extras)
		return
	}
	l.rb.MessageWithExtras(level, r.msg, r.extras)
}

type rbItem struct {
	msg    string
	err    error
	extras map[string]interface{}
}

// expected fmt: msg | error, map[string]interface{}, core.Caller
func (l *RollbarLogger) prepare(msg string, args []interface{}) (rbItem, []zap.Field) {
	var callerSet bool
	item := rbItem{msg: msg, extras: make(map[string]interface{})}
	fields := make([]zap.Field, 0, len(args))

	for i, arg := range args {
		switch a := arg.(type) {
		case core.Caller:
			if !callerSet { // only set one caller
				l.rb.SetPerson(a.ID, a.Role, "")
				callerSet = true
				fields = append(fields, zap.String("callerId", a.ID), zap.String("callerRole", a.Role))
			}
		case error:
			item.err = a
			fields = append(fields, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				item.extras[k] = v
				fields = append(fields, zap.Any(k, v))
			}
		default:
			key := fmt.Sprintf("arg%d", i)
			item.extras[key] = a
			fields = append(fields, zap.Any(key, a))
		}
	}
	if !callerSet {
		l.rb.ClearPerson()
	}
	if item.err != nil {
		item.extras["message"] = msg
	}
	return item, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	item, fields := l.prepare(msg, args)
	l.report(rollbar.DEBUG, item)
	l.zl.Debug(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	item, fields := l.prepare(msg, args)
	l.report(rollbar.INFO, item)
	l.zl.Info(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	item, fields := l.prepare(msg, args)
	l.report(rollbar.WARN, item)
	l.zl.Warn(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	item, fields := l.prepare(msg, args)
	l.report(rollbar.ERR, item)
	l.zl.Error(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	item, fields := l.prepare(msg, args)
	l.report(rollbar.CRIT, item)
	l.rb.Wait()
	l.zl.Fatal(msg, fields...)
}
