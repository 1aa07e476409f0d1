package cli_helpers

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// WarnOnBool warns about a bare "true" or "false" argument. urfave/cli only
// accepts booleans as --flag or --flag=value, so "--fail-fast true" leaves
// "true" behind as a positional argument, which unpack would then treat as
// an archive path.
func WarnOnBool(args []string) {
	if len(args) < 2 {
		return
	}

	for i := 1; i < len(args); i++ {
		value := strings.ToLower(args[i])
		if value != "true" && value != "false" {
			continue
		}

		flag := "--key"
		if i > 1 && strings.HasPrefix(args[i-1], "-") {
			flag = args[i-1]
		}

		logrus.Warningf("boolean parameters must be passed in the command line with %s=%s", flag, value)
		logrus.Warningln("parameters after this may be ignored")
		return
	}
}
