package phttp

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about faults in the transport
// bridge that no handler could observe.
type Logger interface {
	LogUnhandledServeError(err error)
	LogResponseWriteError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("phttp: unhandled serve error: %s", err)
}

func (l stdLogger) LogResponseWriteError(err error) {
	l.Logger.Printf("phttp: error while writing response: %s", err)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogResponseWriteError  int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("phttp: unhandled serve error: %s", err)
}

func (l *TestLogger) LogResponseWriteError(err error) {
	atomic.AddInt64(&l.NumLogResponseWriteError, 1)
	l.tb.Logf("phttp: error while writing response: %s", err)
}

var _ Logger = &TestLogger{}
