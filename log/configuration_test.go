//go:build !integration

package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func prepareFakeConfiguration() func() {
	oldConfiguration := configuration
	configuration = NewConfig(logrus.StandardLogger())

	return func() {
		configuration = oldConfiguration
		configuration.ReloadConfiguration()
	}
}

func testCommandRun(args ...string) {
	app := cli.NewApp()
	app.Commands = []cli.Command{
		{
			Name:   "logtest",
			Action: func(cliCtx *cli.Context) {},
		},
	}

	ConfigureLogging(app)

	args = append([]string{"binary"}, args...)
	args = append(args, "logtest")

	_ = app.Run(args)
}

func TestHandleCliCtx(t *testing.T) {
	tests := map[string]struct {
		args                     []string
		expectedError            string
		expectedLevel            logrus.Level
		expectedFormatter        logrus.Formatter
		expectedLevelSetWithCli  bool
		expectedFormatSetWithCli bool
	}{
		"no configuration specified": {
			expectedLevel:     logrus.InfoLevel,
			expectedFormatter: new(ConsoleFormatter),
		},
		"--log-level specified": {
			args:                    []string{"--log-level", "error"},
			expectedLevel:           logrus.ErrorLevel,
			expectedFormatter:       new(ConsoleFormatter),
			expectedLevelSetWithCli: true,
		},
		"--debug specified": {
			args:                    []string{"--debug"},
			expectedLevel:           logrus.DebugLevel,
			expectedFormatter:       new(ConsoleFormatter),
			expectedLevelSetWithCli: true,
		},
		"--log-level and --debug specified": {
			args:                    []string{"--log-level", "error", "--debug"},
			expectedLevel:           logrus.DebugLevel,
			expectedFormatter:       new(ConsoleFormatter),
			expectedLevelSetWithCli: true,
		},
		"invalid --log-level specified": {
			args:          []string{"--log-level", "test"},
			expectedError: "failed to parse log level",
		},
		"--log-format specified": {
			args:                     []string{"--log-format", "json"},
			expectedLevel:            logrus.InfoLevel,
			expectedFormatter:        new(logrus.JSONFormatter),
			expectedFormatSetWithCli: true,
		},
		"invalid --log-format specified": {
			args:          []string{"--log-format", "test"},
			expectedError: "unknown log format",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			defer prepareFakeConfiguration()()
			fatalToPanic(t)

			if tc.expectedError == "" {
				assert.NotPanics(t, func() { testCommandRun(tc.args...) })

				assert.Equal(t, tc.expectedLevel, Configuration().level)
				assert.Equal(t, tc.expectedFormatter, Configuration().format)
				assert.Equal(t, tc.expectedLevelSetWithCli, Configuration().IsLevelSetWithCli())
				assert.Equal(t, tc.expectedFormatSetWithCli, Configuration().IsFormatSetWithCli())
				return
			}

			var (
				message *logrus.Entry
				ok      bool
			)

			func() {
				defer func() {
					message, ok = recover().(*logrus.Entry)
				}()

				testCommandRun(tc.args...)
			}()

			require.True(t, ok)

			panicMessage, err := message.String()
			require.NoError(t, err)

			assert.Contains(t, panicMessage, "Error while setting up logging configuration")
			assert.Contains(t, panicMessage, tc.expectedError)
		})
	}
}

func TestSetFormatListsKnownFormats(t *testing.T) {
	err := NewConfig(logrus.New()).SetFormat("yaml")
	assert.EqualError(t, err, `unknown log format "yaml", expected one of: [console json text]`)
}
