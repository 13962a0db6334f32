// Package telemetry collects go-metrics in memory and renders them for
// the command line.
package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/armon/go-metrics"
)

// Setup installs an in-memory sink as the global metrics destination,
// aggregating over interval, and returns it for dumping.
func Setup(service string, interval time.Duration) (*metrics.InmemSink, error) {
	sink := metrics.NewInmemSink(interval, 5*interval)

	if _, err := metrics.NewGlobal(Config(service), sink); err != nil {
		return nil, fmt.Errorf("installing metrics sink: %w", err)
	}

	return sink, nil
}

// Config is the metrics configuration used by Setup. Host names and
// runtime statistics are left out.
func Config(service string) *metrics.Config {
	cfg := metrics.DefaultConfig(service)
	cfg.EnableHostname = false
	cfg.EnableRuntimeMetrics = false

	return cfg
}

// Dump writes every retained interval of sink to w, one metric per
// line, sorted by name within each kind.
func Dump(w io.Writer, sink *metrics.InmemSink) error {
	var buf bytes.Buffer

	for _, intv := range sink.Data() {
		intv.RLock()

		lines := make([]string, 0, len(intv.Gauges)+len(intv.Counters)+len(intv.Samples))
		for _, val := range intv.Gauges {
			lines = append(lines, fmt.Sprintf("[G] '%s': %0.3f", flattenLabels(val.Name, val.Labels), val.Value))
		}
		for name, vals := range intv.Points {
			for _, val := range vals {
				lines = append(lines, fmt.Sprintf("[P] '%s': %0.3f", name, val))
			}
		}
		for _, agg := range intv.Counters {
			lines = append(lines, fmt.Sprintf("[C] '%s': %s", flattenLabels(agg.Name, agg.Labels), agg.AggregateSample))
		}
		for _, agg := range intv.Samples {
			lines = append(lines, fmt.Sprintf("[S] '%s': %s", flattenLabels(agg.Name, agg.Labels), agg.AggregateSample))
		}

		intv.RUnlock()

		slices.Sort(lines)
		for _, line := range lines {
			fmt.Fprintf(&buf, "[%v]%s\n", intv.Interval.Format(time.RFC3339), line)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}

	return nil
}

// flattenLabels appends label values to name, replacing characters
// that would break the line format.
func flattenLabels(name string, labels []metrics.Label) string {
	buf := bytes.NewBufferString(name)
	replacer := strings.NewReplacer(" ", "_", ":", "_")

	for _, label := range labels {
		_, _ = replacer.WriteString(buf, ".")
		_, _ = replacer.WriteString(buf, label.Value)
	}

	return buf.String()
}
