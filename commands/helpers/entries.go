package helpers

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/common"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

type EntriesCommand struct {
	File string `long:"file" description:"Archive to list"`

	out io.Writer
}

func (c *EntriesCommand) Execute(_ *cli.Context) {
	if c.out == nil {
		c.out = os.Stdout
	}

	if err := c.list(); err != nil {
		logrus.Fatalln(err)
	}
}

func (c *EntriesCommand) list() error {
	if c.File == "" {
		return errMissingFile
	}

	a, err := archives.OpenArchive(c.File)
	if err != nil {
		return err
	}
	defer a.Close()

	catalog := a.Catalog()

	w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "OFFSET\tMETHOD\tCOMPRESSED\tSIZE\tCRC32\tNAME")
	for _, entry := range catalog.Entries() {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%08x\t%s\n",
			entry.LocalHeaderOffset,
			entry.Method,
			entry.CompressedSize,
			entry.UncompressedSize,
			entry.CRC32,
			entry.Name,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(c.out, "%d entries, central directory at %d (%d bytes)\n",
		catalog.Len(), catalog.Trailer.DirectoryOffset, catalog.Trailer.DirectorySize)
	if err != nil {
		return err
	}

	if len(catalog.Trailer.Comment) > 0 {
		_, err = fmt.Fprintf(c.out, "comment: %s\n", catalog.Trailer.Comment)
	}

	return err
}

func init() {
	common.RegisterCommand("entries", "list the central directory of a zip or osz archive", &EntriesCommand{})
}
