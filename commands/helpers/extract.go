package helpers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/commands/helpers/archive"
	_ "gitlab.com/gitlab-org/osz-unpacker/commands/helpers/archive/zipdeflate"
	"gitlab.com/gitlab-org/osz-unpacker/common"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

var errMissingFile = errors.New("missing --file")

type ExtractCommand struct {
	File        string   `long:"file" description:"Archive to extract"`
	Dir         string   `long:"dir" description:"Output directory (default: current directory)"`
	Format      string   `long:"format" description:"Archive format (default: derived from the file extension)"`
	Include     []string `long:"include" description:"Only extract members matching these patterns"`
	Exclude     []string `long:"exclude" description:"Skip members matching these patterns"`
	FailFast    bool     `long:"fail-fast" description:"Stop at the first member that fails to extract"`
	Concurrency int      `long:"concurrency" description:"Number of members extracted at once"`
}

func (c *ExtractCommand) Execute(_ *cli.Context) {
	results, err := c.extract(context.Background())
	if results != nil {
		logrus.WithFields(logrus.Fields{
			"extracted": len(results.Paths()),
			"failed":    len(results.Failed()),
		}).Infoln("Extracted", c.File)
	}

	if err != nil {
		logrus.Fatalln(err)
	}
}

func (c *ExtractCommand) format() (archive.Format, error) {
	if c.Format != "" {
		return archive.Format(c.Format), nil
	}

	return archive.FormatFromPath(c.File)
}

func (c *ExtractCommand) options() ([]archives.Option, error) {
	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	opts := []archives.Option{archives.WithConcurrency(c.Concurrency)}
	if c.FailFast {
		opts = append(opts, archives.WithFailFast())
	}
	if len(c.Include) > 0 || len(c.Exclude) > 0 {
		opts = append(opts, archives.WithFilter(c.matches))
	}

	return opts, nil
}

// matches reports whether a member is selected. Patterns are validated
// up front, so match errors cannot happen here.
func (c *ExtractCommand) matches(name string) bool {
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return false
		}
	}

	if len(c.Include) == 0 {
		return true
	}

	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

func (c *ExtractCommand) extract(ctx context.Context) (archives.Results, error) {
	if c.File == "" {
		return nil, errMissingFile
	}

	format, err := c.format()
	if err != nil {
		return nil, err
	}

	opts, err := c.options()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	dir := c.Dir
	if dir == "" {
		dir = "."
	}

	extractor, err := archive.NewExtractor(format, f, fi.Size(), dir, opts...)
	if err != nil {
		return nil, err
	}

	return extractor.Extract(ctx)
}

func init() {
	common.RegisterCommand("extract", "extract a zip or osz archive into a directory", &ExtractCommand{})
}
