package metrics

import "time"

// IOProfile names a coarse per-operation latency constant set. Profiles
// never influence any simulator decision (victim selection, allocation,
// GC triggering); they only scale the synthetic throughput/latency figures
// ComputeThroughput derives after a run completes, per spec.md §6
// "io_profile ... Only cosmetic to metrics; does not alter decisions."
type IOProfile string

const (
	IOProfileDefault   IOProfile = "default"
	IOProfileFast      IOProfile = "fast"
	IOProfileSlow      IOProfile = "slow"
	IOProfileQoSLowLat IOProfile = "qos_lowlat"
)

// ioLatencies holds the assumed per-page read/program/erase/migrate
// latency for one profile, grounded in original_source/venv/GC/config.py's
// io_profile latency table.
type ioLatencies struct {
	read, program, erase, migrate time.Duration
}

var profileLatencies = map[IOProfile]ioLatencies{
	IOProfileDefault:   {read: 50 * time.Microsecond, program: 300 * time.Microsecond, erase: 3 * time.Millisecond, migrate: 350 * time.Microsecond},
	IOProfileFast:      {read: 25 * time.Microsecond, program: 150 * time.Microsecond, erase: 1500 * time.Microsecond, migrate: 175 * time.Microsecond},
	IOProfileSlow:      {read: 100 * time.Microsecond, program: 600 * time.Microsecond, erase: 6 * time.Millisecond, migrate: 700 * time.Microsecond},
	IOProfileQoSLowLat: {read: 20 * time.Microsecond, program: 120 * time.Microsecond, erase: 1200 * time.Microsecond, migrate: 140 * time.Microsecond},
}

func latenciesFor(p IOProfile) ioLatencies {
	if l, ok := profileLatencies[p]; ok {
		return l
	}
	return profileLatencies[IOProfileDefault]
}

// Throughput holds the synthetic, profile-derived figures spec.md's
// original SUMMARY_HEADER names (thr_MBps, iops, lat_p50/p95/p99_ms):
// cosmetic estimates computed from completed op counts and a fixed
// per-page latency assumption, never from measured timings.
type Throughput struct {
	ThroughputMBps float64
	IOPS           float64
	LatencyP50ms   float64
	LatencyP95ms   float64
	LatencyP99ms   float64
}

// pageBytes is the assumed logical page size used only for the MB/s
// estimate; it has no effect on any block/page indexing in internal/ftl.
const pageBytes = 4096

// ComputeThroughput derives a Throughput estimate for a completed run under
// the given profile, assuming pageBytes per page. MB/s and IOPS are taken
// over wallClock when it is positive, and otherwise over the modelled time
// deviceWritePages * the profile's program latency.
func ComputeThroughput(profile IOProfile, hostWritePages, deviceWritePages int64, wallClock time.Duration) Throughput {
	lat := latenciesFor(profile)
	perOpLatency := lat.program

	var seconds float64
	if wallClock > 0 {
		seconds = wallClock.Seconds()
	} else {
		seconds = float64(deviceWritePages) * perOpLatency.Seconds()
	}

	var mbps, iops float64
	if seconds > 0 {
		mbps = float64(hostWritePages*pageBytes) / (1024 * 1024) / seconds
		iops = float64(hostWritePages) / seconds
	}

	return Throughput{
		ThroughputMBps: mbps,
		IOPS:           iops,
		LatencyP50ms:   perOpLatency.Seconds() * 1000,
		LatencyP95ms:   (lat.program + lat.migrate).Seconds() * 1000,
		LatencyP99ms:   (lat.program + lat.erase).Seconds() * 1000,
	}
}
