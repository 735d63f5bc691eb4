// Package diagnostics backs the doctor command and crash reporting.
//
// The package implements three main components:
//
//   - Doctor checks: named pass/warn/fail probes over the reviewer's
//     environment (configuration, backend reachability, journal storage,
//     disk space, past crashes) assembled into a Report.
//
//   - Host and process snapshots: one-shot collection of CPU, memory,
//     disk, load and network interface information plus the process's own
//     descriptor, goroutine and heap state.
//
//   - CrashDumpWriter: captures and persists diagnostic information when
//     a review session panics, enabling post-mortem debugging without
//     asking the reviewer what they were doing.
package diagnostics
