package prometheus

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var numLogMessagesDesc = prometheus.NewDesc(
	"osz_unpacker_log_messages_total",
	"Total number of warning or worse messages logged.",
	[]string{"level"},
	nil,
)

// LogHook counts warnings and errors logged while it is installed.
type LogHook struct {
	messages map[logrus.Level]*int64
}

func (lh *LogHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

func (lh *LogHook) Fire(entry *logrus.Entry) error {
	if counter, ok := lh.messages[entry.Level]; ok {
		atomic.AddInt64(counter, 1)
	}
	return nil
}

func (lh *LogHook) Describe(ch chan<- *prometheus.Desc) {
	ch <- numLogMessagesDesc
}

func (lh *LogHook) Collect(ch chan<- prometheus.Metric) {
	for level, counter := range lh.messages {
		ch <- prometheus.MustNewConstMetric(
			numLogMessagesDesc,
			prometheus.CounterValue,
			float64(atomic.LoadInt64(counter)),
			level.String(),
		)
	}
}

func NewLogHook() *LogHook {
	lh := &LogHook{}

	levels := lh.Levels()
	lh.messages = make(map[logrus.Level]*int64, len(levels))
	for _, level := range levels {
		lh.messages[level] = new(int64)
	}

	return lh
}
