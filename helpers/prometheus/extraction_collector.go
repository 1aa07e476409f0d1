package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

var (
	numExtractedDesc = prometheus.NewDesc(
		"osz_unpacker_extracted_members_total",
		"Total number of archive members extracted",
		nil,
		nil,
	)
	numExtractedBytesDesc = prometheus.NewDesc(
		"osz_unpacker_extracted_bytes_total",
		"Total number of decompressed bytes produced",
		nil,
		nil,
	)
	numFailedDesc = prometheus.NewDesc(
		"osz_unpacker_failed_members_total",
		"Total number of archive members that failed to extract",
		[]string{"reason"},
		nil,
	)
)

type FailureReason string

const (
	ReasonBadSignature   FailureReason = "bad_signature"
	ReasonTruncated      FailureReason = "truncated"
	ReasonDecompression  FailureReason = "decompression_failed"
	ReasonChecksum       FailureReason = "checksum_mismatch"
	ReasonSizeMismatch   FailureReason = "size_mismatch"
	ReasonInsecurePath   FailureReason = "insecure_path"
	ReasonIO             FailureReason = "io"
	ReasonUnknownFailure FailureReason = "unknown"
)

var failureReasons = []struct {
	err    error
	reason FailureReason
}{
	{archives.ErrBadSignature, ReasonBadSignature},
	{archives.ErrTruncated, ReasonTruncated},
	{archives.ErrDecompressionFailed, ReasonDecompression},
	{archives.ErrChecksum, ReasonChecksum},
	{archives.ErrSizeMismatch, ReasonSizeMismatch},
	{archives.ErrInsecurePath, ReasonInsecurePath},
	{archives.ErrIO, ReasonIO},
}

// FailureReasonFor maps a member error onto the reason label.
func FailureReasonFor(err error) FailureReason {
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonUnknownFailure
}

// ExtractionCollector counts member outcomes. It is an archives.Observer,
// so it can be passed straight to an extraction with archives.WithObserver.
type ExtractionCollector struct {
	lock sync.RWMutex

	extracted int64
	bytes     int64
	failures  map[FailureReason]int64
}

func (ec *ExtractionCollector) MemberExtracted(_ string, size int) {
	ec.lock.Lock()
	defer ec.lock.Unlock()

	ec.extracted++
	ec.bytes += int64(size)
}

func (ec *ExtractionCollector) MemberFailed(_ string, err error) {
	ec.lock.Lock()
	defer ec.lock.Unlock()

	ec.failures[FailureReasonFor(err)]++
}

func (ec *ExtractionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- numExtractedDesc
	ch <- numExtractedBytesDesc
	ch <- numFailedDesc
}

func (ec *ExtractionCollector) Collect(ch chan<- prometheus.Metric) {
	ec.lock.RLock()
	defer ec.lock.RUnlock()

	ch <- prometheus.MustNewConstMetric(numExtractedDesc, prometheus.CounterValue, float64(ec.extracted))
	ch <- prometheus.MustNewConstMetric(numExtractedBytesDesc, prometheus.CounterValue, float64(ec.bytes))

	for reason, number := range ec.failures {
		ch <- prometheus.MustNewConstMetric(
			numFailedDesc,
			prometheus.CounterValue,
			float64(number),
			string(reason),
		)
	}
}

func NewExtractionCollector() *ExtractionCollector {
	return &ExtractionCollector{
		failures: make(map[FailureReason]int64),
	}
}

// WriteTextfile writes the collectors to path in the Prometheus text
// format, for pickup by the node exporter textfile collector.
func WriteTextfile(path string, collectors ...prometheus.Collector) error {
	registry := prometheus.NewRegistry()
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return prometheus.WriteToTextfile(path, registry)
}
