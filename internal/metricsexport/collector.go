// Package metricsexport adapts a running Device into Prometheus metrics,
// mirroring internal/registry.NewRegistry's wrap-and-register-builtins
// pattern from the teacher repository. The core simulator never imports
// this package; it exists so a long-running comparison harness can scrape
// device state mid-run.
package metricsexport

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flashbench/ftlsim/internal/ftl"
	"github.com/flashbench/ftlsim/internal/metrics"
)

const namespace = "ftlsim"

// SimulatorCollector implements prometheus.Collector over a read-only
// Device snapshot. It is safe to register against multiple registries; it
// holds no state of its own beyond the Device pointer.
type SimulatorCollector struct {
	dev *ftl.Device

	waf          *prometheus.Desc
	gcCount      *prometheus.Desc
	gcDuration   *prometheus.Desc
	hostWrites   *prometheus.Desc
	deviceWrites *prometheus.Desc
	wearByBlock  *prometheus.Desc
	freePages    *prometheus.Desc
}

// NewSimulatorCollector constructs a SimulatorCollector over dev.
func NewSimulatorCollector(dev *ftl.Device) *SimulatorCollector {
	return &SimulatorCollector{
		dev: dev,
		waf: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "write_amplification_factor"),
			"Device write pages over host write pages.", nil, nil,
		),
		gcCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "gc_count_total"),
			"Total number of completed GC invocations.", nil, nil,
		),
		gcDuration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "gc_duration_seconds_avg"),
			"Average GC invocation wall-clock duration across the run so far.", nil, nil,
		),
		hostWrites: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "host_write_pages_total"),
			"Total number of host-initiated page writes.", nil, nil,
		),
		deviceWrites: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "device_write_pages_total"),
			"Total number of physical page programs, including GC migrations.", nil, nil,
		),
		wearByBlock: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "block_erase_count"),
			"Erase count for a single block.", []string{"block"}, nil,
		),
		freePages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "free_pages"),
			"Currently free physical pages.", nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SimulatorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.waf
	ch <- c.gcCount
	ch <- c.gcDuration
	ch <- c.hostWrites
	ch <- c.deviceWrites
	ch <- c.wearByBlock
	ch <- c.freePages
}

// Collect implements prometheus.Collector.
func (c *SimulatorCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.waf, prometheus.GaugeValue, c.dev.WAF())
	ch <- prometheus.MustNewConstMetric(c.gcCount, prometheus.CounterValue, float64(c.dev.GCCount()))
	ch <- prometheus.MustNewConstMetric(c.hostWrites, prometheus.CounterValue, float64(c.dev.HostWritePages()))
	ch <- prometheus.MustNewConstMetric(c.deviceWrites, prometheus.CounterValue, float64(c.dev.DeviceWritePages()))
	ch <- prometheus.MustNewConstMetric(c.freePages, prometheus.GaugeValue, float64(c.dev.FreePages()))

	lat := metrics.ComputeGCLatencyStats(c.dev.GCDurations())
	ch <- prometheus.MustNewConstMetric(c.gcDuration, prometheus.GaugeValue, lat.Avg.Seconds())

	for i := 0; i < c.dev.NumBlocks(); i++ {
		b := c.dev.Block(i)
		ch <- prometheus.MustNewConstMetric(c.wearByBlock, prometheus.GaugeValue,
			float64(b.EraseCount()), strconv.Itoa(i))
	}
}

// NewRegistry wraps a prometheus.Registry with the process/Go builtin
// collectors plus the given SimulatorCollector, mirroring
// internal/registry.NewRegistry's wrap-and-register-builtins shape.
func NewRegistry(sc *SimulatorCollector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(sc)
	return r
}
