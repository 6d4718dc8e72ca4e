// Package report writes a completed run's Summary as a CSV row (appended,
// header written once) or as JSON, the Go counterpart of
// original_source/venv/GC/metrics.py's append_summary_csv/SUMMARY_HEADER.
// This is a minimal, stable summary writer: the full CLI/plotting surface
// around it is an excluded external collaborator (spec.md §1 Non-goals).
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/flashbench/ftlsim/internal/ftl"
	"github.com/flashbench/ftlsim/internal/metrics"
	"github.com/flashbench/ftlsim/internal/runinfo"
)

// Row is one flattened summary record, matching the field order AppendCSV
// emits and the JSON shape WriteJSON emits.
type Row struct {
	Summary metrics.Summary
	Run     runinfo.RunInfo
}

var csvHeader = []string{
	"policy", "ops", "host_write_pages", "device_write_pages", "waf",
	"gc_count", "free_pages", "total_pages",
	"wear_mean", "wear_stdev", "wear_p50", "wear_p95", "wear_max", "wear_gini", "wear_cv",
	"gc_time_total_ms", "gc_time_avg_ms", "gc_p50_ms", "gc_p95_ms", "gc_p99_ms",
	"gc_events", "gc_zero_moved_ratio",
	"io_profile", "thr_mbps", "iops", "lat_p50_ms", "lat_p95_ms", "lat_p99_ms",
	"hostname", "platform", "num_cpu", "go_version",
	"note",
}

// AppendCSV appends row to the CSV file at path, writing the header first
// if the file does not yet exist or is empty.
func AppendCSV(path string, row Row) error {
	writeHeader := false
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	return w.Write(rowToFields(row))
}

func rowToFields(row Row) []string {
	s := row.Summary
	return []string{
		s.Policy,
		strconv.FormatInt(s.Ops, 10),
		strconv.FormatInt(s.HostWritePages, 10),
		strconv.FormatInt(s.DeviceWritePages, 10),
		formatFloat(s.WAF),
		strconv.FormatInt(s.GCCount, 10),
		strconv.FormatInt(s.FreePages, 10),
		strconv.FormatInt(s.TotalPages, 10),
		formatFloat(s.Wear.Mean),
		formatFloat(s.Wear.Stdev),
		formatFloat(s.Wear.P50),
		formatFloat(s.Wear.P95),
		strconv.FormatInt(s.Wear.Max, 10),
		formatFloat(s.Wear.Gini),
		formatFloat(s.Wear.CV),
		formatFloat(float64(s.GC.Total.Milliseconds())),
		formatFloat(float64(s.GC.Avg.Milliseconds())),
		formatFloat(float64(s.GC.P50.Milliseconds())),
		formatFloat(float64(s.GC.P95.Milliseconds())),
		formatFloat(float64(s.GC.P99.Milliseconds())),
		strconv.Itoa(s.Events.Count),
		formatFloat(s.Events.ZeroMovedRatio),
		string(s.IOProfile),
		formatFloat(s.Throughput.ThroughputMBps),
		formatFloat(s.Throughput.IOPS),
		formatFloat(s.Throughput.LatencyP50ms),
		formatFloat(s.Throughput.LatencyP95ms),
		formatFloat(s.Throughput.LatencyP99ms),
		row.Run.Hostname,
		row.Run.Platform,
		strconv.Itoa(row.Run.NumCPU),
		row.Run.GoVersion,
		s.Note,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// WriteJSON writes row to w as a single JSON object.
func WriteJSON(w io.Writer, row Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(row)
}

// WriteTraceCSV writes a per-step trace to path, the Go counterpart of
// save_trace_csv.
func WriteTraceCSV(path string, trace []ftl.TraceRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "free_pages", "device_writes", "gc_count", "gc_event"}); err != nil {
		return err
	}
	for _, r := range trace {
		if err := w.Write([]string{
			strconv.FormatInt(r.Step, 10),
			strconv.FormatInt(r.FreePages, 10),
			strconv.FormatInt(r.DeviceWrites, 10),
			strconv.FormatInt(r.GCCount, 10),
			strconv.FormatBool(r.GCEventThisOp),
		}); err != nil {
			return err
		}
	}
	return nil
}
