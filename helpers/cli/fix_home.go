package cli_helpers

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"gitlab.com/gitlab-org/osz-unpacker/helpers/homedir"
)

// FixHOME exports the home directory variable when it is missing, so the
// per-user data directory can be resolved.
func FixHOME(app *cli.App) {
	appBefore := app.Before

	app.Before = func(c *cli.Context) error {
		hd := homedir.New()
		if key := hd.Env(); os.Getenv(key) == "" {
			value := hd.Get()
			if value == "" {
				return fmt.Errorf("the %q is not set", key)
			}
			_ = os.Setenv(key, value)
		}

		if appBefore != nil {
			return appBefore(c)
		}
		return nil
	}
}
