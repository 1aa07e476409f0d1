package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/common"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
	prometheus_helper "gitlab.com/gitlab-org/osz-unpacker/helpers/prometheus"
)

var errNoArchives = errors.New("no archives given")

type UnpackCommand struct {
	configOptions

	MetricsTextfile string `long:"metrics-textfile" description:"Write extraction metrics to this file in the Prometheus text format"`

	out io.Writer
}

func (c *UnpackCommand) Execute(cliContext *cli.Context) {
	if c.out == nil {
		c.out = os.Stdout
	}

	if err := c.run(context.Background(), cliContext.Args()); err != nil {
		logrus.Fatalln(err)
	}
}

func (c *UnpackCommand) run(ctx context.Context, archivePaths []string) error {
	if len(archivePaths) == 0 {
		return errNoArchives
	}

	c.configAccessCollector = newConfigAccessCollector()
	extraction := prometheus_helper.NewExtractionCollector()
	logHook := prometheus_helper.NewLogHook()
	defer installLogHook(logHook)()

	library, err := c.library(archives.WithObserver(extraction))
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, archivePath := range archivePaths {
		paths, err := library.Unpack(ctx, archivePath)
		c.printPaths(paths)

		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unpacking %s: %w", archivePath, err))
		}
	}

	c.writeMetrics(extraction, logHook)

	return errs.ErrorOrNil()
}

func (c *UnpackCommand) printPaths(paths map[string]string) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, _ = fmt.Fprintf(c.out, "%s\t%s\n", name, paths[name])
	}
}

func (c *UnpackCommand) writeMetrics(collectors ...prometheus.Collector) {
	textfile := c.MetricsTextfile
	if textfile == "" && c.config != nil {
		textfile = c.config.MetricsTextfile
	}
	if textfile == "" {
		return
	}

	collectors = append(collectors, c.configAccessCollector, common.AppVersion.NewMetricsCollector())
	if err := prometheus_helper.WriteTextfile(textfile, collectors...); err != nil {
		logrus.WithError(err).WithField("file", textfile).Warningln("Failed to write metrics")
	}
}

// installLogHook adds hook to the standard logger until the returned
// function is called.
func installLogHook(hook logrus.Hook) func() {
	logger := logrus.StandardLogger()

	hooks := make(logrus.LevelHooks)
	for level, levelHooks := range logger.Hooks {
		hooks[level] = append([]logrus.Hook(nil), levelHooks...)
	}
	hooks.Add(hook)

	previous := logger.ReplaceHooks(hooks)
	return func() {
		logger.ReplaceHooks(previous)
	}
}

func init() {
	common.RegisterCommand("unpack", "unpack .osz beatmap archives into the songs library", &UnpackCommand{})
}
