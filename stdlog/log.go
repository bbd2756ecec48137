// Package stdlog defines the minimal logging interface the rest of this
// module depends on, so that callers can plug in any logger (stdlib log,
// logrus, zap, ...) without this module importing a specific one.
package stdlog

import (
	"log"
	"os"
)

// StdLog is the logging capability the router and session packages
// require: the three print methods of the stdlib log.Logger, with no
// levels. NewDebug layers a separate debug gate on top.
type StdLog interface {
	Print(v ...interface{})
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

// debugLog additionally gates verbose output behind a package-level flag,
// mirroring the teacher's DebugEnabled switch in router.go.
type debugLog struct {
	StdLog
	enabled *bool
}

// New returns the default StdLog: a stdlib logger writing to stdout with
// standard flags, the same default the teacher assigns at package scope.
func New() StdLog {
	return log.New(os.Stdout, "", log.LstdFlags)
}

// NewDebug wraps a StdLog so that Debug-prefixed calls are silenced unless
// *enabled is true at call time.
func NewDebug(l StdLog, enabled *bool) interface {
	StdLog
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
} {
	return &debugLog{StdLog: l, enabled: enabled}
}

func (d *debugLog) Debug(v ...interface{}) {
	if d.enabled != nil && *d.enabled {
		d.Print(v...)
	}
}

func (d *debugLog) Debugf(format string, v ...interface{}) {
	if d.enabled != nil && *d.enabled {
		d.Printf(format, v...)
	}
}
