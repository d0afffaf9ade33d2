// Command logsys is an interactive console for inspecting and adjusting
// the levels of a running log facility, and for persisting/restoring its
// level configuration to disk.
package main

import (
	"github.com/joeycumines/corert/logbackend"
	"github.com/joeycumines/corert/logfacility"
)

// environment bundles the facility this process manages together with
// the back-ends LogHistory and the CLI colouring read from.
type environment struct {
	facility *logfacility.Facility
	ring     *logbackend.Ring
	cli      *logbackend.CLI
	loggers  []*logfacility.Logger
}

// componentDefaultLevels seeds the facility's default-level table for the
// core components this binary ships alongside.
var componentDefaultLevels = map[string]logfacility.Level{
	"heap":       logfacility.Warning,
	"workqueue":  logfacility.Info,
	"cyclicexec": logfacility.Info,
	"ttcectrl":   logfacility.Info,
}

func newEnvironment() (*environment, error) {
	facility, err := logfacility.New(256)
	if err != nil {
		return nil, err
	}
	facility.SetDefaultLevels(componentDefaultLevels)

	env := &environment{
		facility: facility,
		ring:     logbackend.NewRing(1000),
		cli:      logbackend.NewCLI(nil),
	}
	facility.RegisterBackend(env.cli)
	facility.RegisterBackend(env.ring)

	for _, name := range []string{"heap", "workqueue", "cyclicexec", "ttcectrl"} {
		env.loggers = append(env.loggers, facility.Register(name))
	}

	facility.Start(nil)
	return env, nil
}

// close drains and tears down the facility, satisfying its lifecycle
// precondition (every logger/back-end unregistered before Close).
func (e *environment) close() {
	e.facility.Stop()
	for _, l := range e.loggers {
		e.facility.Unregister(l)
	}
	e.facility.UnregisterBackend(e.cli)
	e.facility.UnregisterBackend(e.ring)
	e.facility.Close()
}
