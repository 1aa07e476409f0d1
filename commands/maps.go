package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/common"
)

type MapsCommand struct {
	configOptions

	out io.Writer
}

func (c *MapsCommand) Execute(_ *cli.Context) {
	if c.out == nil {
		c.out = os.Stdout
	}

	if err := c.run(); err != nil {
		logrus.Fatalln(err)
	}
}

func (c *MapsCommand) run() error {
	library, err := c.library()
	if err != nil {
		return err
	}

	maps, err := library.Maps()
	if err != nil {
		return err
	}

	names := lo.Keys(maps)
	sort.Strings(names)

	for _, name := range names {
		_, _ = fmt.Fprintf(c.out, "%s\t%s\n", name, maps[name])
	}

	return nil
}

func init() {
	common.RegisterCommand("maps", "list the .osu beatmaps in the songs library", &MapsCommand{})
}
