// Package runinfo collects a run's provenance metadata (host, CPU count, Go
// version) for a summary row (report.Row pairs it with the Summary),
// grounded in the teacher's sysinfoCollector use of
// gopsutil/v4/host. It is ambient metadata, not part of the core
// invariants.
package runinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RunInfo is the provenance metadata attached to a summary row.
type RunInfo struct {
	Hostname  string
	Platform  string
	NumCPU    int
	GoVersion string
}

// Collect gathers the current host's provenance metadata. Errors from the
// underlying gopsutil call are swallowed into a best-effort zero value,
// since provenance is informational and must never fail a run.
func Collect() RunInfo {
	info := RunInfo{
		NumCPU:    runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.Platform = hi.Platform
	}
	return info
}
