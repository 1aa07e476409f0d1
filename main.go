package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/common"
	cli_helpers "gitlab.com/gitlab-org/osz-unpacker/helpers/cli"
	"gitlab.com/gitlab-org/osz-unpacker/log"

	_ "gitlab.com/gitlab-org/osz-unpacker/commands"
	_ "gitlab.com/gitlab-org/osz-unpacker/commands/helpers"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "unpack osu! beatmap archives"
	app.Version = common.AppVersion.ShortLine()
	cli.VersionPrinter = common.AppVersion.Printer
	app.Commands = common.GetCommands()
	app.CommandNotFound = func(context *cli.Context, command string) {
		logrus.Fatalln("Command", command, "not found.")
	}

	cli_helpers.LogRuntimePlatform(app)
	cli_helpers.FixHOME(app)

	log.ConfigureLogging(app)

	return app
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			// log panics forces exit
			if _, ok := r.(*logrus.Entry); ok {
				os.Exit(1)
			}
			panic(r)
		}
	}()

	cli_helpers.WarnOnBool(os.Args)

	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
