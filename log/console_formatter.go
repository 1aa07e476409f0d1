package log

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/osz-unpacker/helpers"
)

const messageWidth = 50

type levelStyle struct {
	color  string
	prefix string
}

var levelStyles = map[logrus.Level]levelStyle{
	logrus.DebugLevel: {color: helpers.ANSI_BOLD_WHITE},
	logrus.WarnLevel:  {color: helpers.ANSI_YELLOW, prefix: "WARNING: "},
	logrus.ErrorLevel: {color: helpers.ANSI_BOLD_RED, prefix: "ERROR: "},
	logrus.FatalLevel: {color: helpers.ANSI_BOLD_RED, prefix: "FATAL: "},
	logrus.PanicLevel: {color: helpers.ANSI_BOLD_RED, prefix: "PANIC: "},
}

// ConsoleFormatter writes one padded, optionally colored line per entry.
// Fields follow the message as key=value pairs.
type ConsoleFormatter struct {
	DisableColors bool

	// Fields are sorted by key unless DisableSorting is set.
	DisableSorting bool
}

func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := new(bytes.Buffer)

	style := levelStyles[entry.Level]
	color, reset := style.color, helpers.ANSI_RESET
	if f.DisableColors {
		color, reset = "", ""
	}

	fmt.Fprintf(b, "%s%s%-*s%s ", color, style.prefix, messageWidth-len(style.prefix), entry.Message, reset)
	for _, k := range f.keys(entry) {
		fmt.Fprintf(b, " %s%s%s=%v", color, k, reset, entry.Data[k])
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}

func (f *ConsoleFormatter) keys(entry *logrus.Entry) []string {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}

	if !f.DisableSorting {
		sort.Strings(keys)
	}

	return keys
}
