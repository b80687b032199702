package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/uber-go/tally"
)

func newDefaultScope(Config) (tally.Scope, io.Closer, error) {
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Reporter: defaultReporter{},
	}, time.Second)
	return scope, closer, nil
}

// defaultReporter prints metrics to stdout. Only useful for debugging tests.
type defaultReporter struct{}

func (r defaultReporter) ReportCounter(name string, _ map[string]string, value int64) {
	fmt.Printf("count %s %d\n", name, value)
}

func (r defaultReporter) ReportGauge(name string, _ map[string]string, value float64) {
	fmt.Printf("gauge %s %f\n", name, value)
}

func (r defaultReporter) ReportTimer(name string, _ map[string]string, interval time.Duration) {
	fmt.Printf("timer %s %s\n", name, interval.String())
}

func (r defaultReporter) ReportHistogramValueSamples(
	name string,
	_ map[string]string,
	_ tally.Buckets,
	bucketLowerBound,
	bucketUpperBound float64,
	samples int64,
) {
	fmt.Printf("histogram %s bucket lower %f upper %f samples %d\n",
		name, bucketLowerBound, bucketUpperBound, samples)
}

func (r defaultReporter) ReportHistogramDurationSamples(
	name string,
	_ map[string]string,
	_ tally.Buckets,
	bucketLowerBound,
	bucketUpperBound time.Duration,
	samples int64,
) {
	fmt.Printf("histogram %s bucket lower %v upper %v samples %d\n",
		name, bucketLowerBound, bucketUpperBound, samples)
}

func (r defaultReporter) Capabilities() tally.Capabilities {
	return r
}

func (r defaultReporter) Reporting() bool {
	return true
}

func (r defaultReporter) Tagging() bool {
	return false
}

func (r defaultReporter) Flush() {}
