//go:build !integration

package log

import (
	"testing"

	"github.com/sirupsen/logrus"
)

// panicOnFatal turns the fatal entry into a panic so tests can recover it
// instead of exiting.
type panicOnFatal struct{}

func (panicOnFatal) Levels() []logrus.Level {
	return []logrus.Level{logrus.FatalLevel}
}

func (panicOnFatal) Fire(e *logrus.Entry) error {
	panic(e)
}

// fatalToPanic installs panicOnFatal on the standard logger for the
// duration of the test.
func fatalToPanic(t *testing.T) {
	logger := logrus.StandardLogger()

	hooks := make(logrus.LevelHooks)
	hooks.Add(panicOnFatal{})

	old := logger.ReplaceHooks(hooks)
	t.Cleanup(func() { logger.ReplaceHooks(old) })
}
