package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"
)

// Status classifies the outcome of a single doctor check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one named probe in a doctor report.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates doctor checks together with host and process state.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Version     string           `json:"version"`
	GoVersion   string           `json:"go_version"`
	OS          string           `json:"os"`
	Arch        string           `json:"arch"`
	Checks      []Check          `json:"checks"`
	Host        HostInfo         `json:"host"`
	Process     ResourceSnapshot `json:"process"`
}

// NewReport creates a report stamped with build and platform info.
func NewReport(version string) *Report {
	return &Report{
		GeneratedAt: time.Now(),
		Version:     version,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
	}
}

// Add appends a check to the report.
func (r *Report) Add(c Check) {
	r.Checks = append(r.Checks, c)
}

// Failed reports whether any check failed outright.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// ConfigCheck reports on configuration loading. path is the config file
// that was used, empty when running on defaults and environment only.
func ConfigCheck(path string, err error) Check {
	c := Check{Name: "config"}
	switch {
	case err != nil:
		c.Status = StatusFail
		c.Detail = err.Error()
	case path == "":
		c.Status = StatusOK
		c.Detail = "no config file, using defaults and environment"
	default:
		c.Status = StatusOK
		c.Detail = fmt.Sprintf("loaded %s", path)
	}
	return c
}

// BackendCheck reports on reachability of the review backend.
func BackendCheck(baseURL string, latency time.Duration, err error) Check {
	c := Check{Name: "backend"}
	if err != nil {
		c.Status = StatusFail
		c.Detail = fmt.Sprintf("%s unreachable: %v", baseURL, err)
		return c
	}
	c.Status = StatusOK
	c.Detail = fmt.Sprintf("%s reachable in %s", baseURL, latency.Round(time.Millisecond))
	return c
}

// JournalCheck reports on the decision journal database. path must
// already be expanded to an absolute location.
func JournalCheck(enabled bool, path string) Check {
	c := Check{Name: "journal"}
	if !enabled {
		c.Status = StatusWarn
		c.Detail = "decision journal disabled in config"
		return c
	}

	fi, err := os.Stat(path)
	switch {
	case err == nil:
		c.Status = StatusOK
		c.Detail = fmt.Sprintf("%s (%.1f KB)", path, float64(fi.Size())/1024)
	case os.IsNotExist(err):
		c.Status = StatusOK
		c.Detail = fmt.Sprintf("%s will be created on first decision", path)
	default:
		c.Status = StatusFail
		c.Detail = err.Error()
	}
	return c
}

// DiskSpaceCheck warns when free space on the reported filesystem drops
// below minFreeGB.
func DiskSpaceCheck(host HostInfo, minFreeGB float64) Check {
	c := Check{Name: "disk space"}
	if host.DiskTotalGB == 0 {
		c.Status = StatusWarn
		c.Detail = "disk usage unavailable"
		return c
	}
	if host.DiskFreeGB < minFreeGB {
		c.Status = StatusWarn
		c.Detail = fmt.Sprintf("%.1f GB free on %s (below %.0f GB)", host.DiskFreeGB, host.DiskPath, minFreeGB)
		return c
	}
	c.Status = StatusOK
	c.Detail = fmt.Sprintf("%.1f GB free on %s", host.DiskFreeGB, host.DiskPath)
	return c
}

// CrashCheck surfaces the most recent crash dump, if any.
func CrashCheck(dir string) Check {
	c := Check{Name: "crash dumps"}
	dump, err := LoadLatestCrashDump(dir)
	switch {
	case errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrNoCrashDumps):
		c.Status = StatusOK
		c.Detail = "none"
	case err != nil:
		c.Status = StatusWarn
		c.Detail = fmt.Sprintf("could not read %s: %v", dir, err)
	default:
		c.Status = StatusWarn
		c.Detail = fmt.Sprintf("last crash %s: %s", dump.Timestamp.Format(time.RFC3339), dump.PanicValue)
	}
	return c
}
