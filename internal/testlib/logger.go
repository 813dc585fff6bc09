package testlib

import "github.com/ssocks/ssgate/ssgate"

// NoopLogger discards everything. Handy for tests which do not assert
// on log output.
type NoopLogger struct{}

func (n NoopLogger) Named(name string) ssgate.Logger { return n }

func (n NoopLogger) BindStr(name, value string) ssgate.Logger { return n }

func (n NoopLogger) BindInt(name string, value int) ssgate.Logger { return n }

func (n NoopLogger) Debug(msg string) {}

func (n NoopLogger) DebugError(msg string, err error) {}

func (n NoopLogger) Info(msg string) {}

func (n NoopLogger) InfoError(msg string, err error) {}

func (n NoopLogger) Warning(msg string) {}

func (n NoopLogger) WarningError(msg string, err error) {}

var _ ssgate.Logger = NoopLogger{}
