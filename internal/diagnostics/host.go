package diagnostics

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// NetworkInterface describes one host NIC (best-effort).
type NetworkInterface struct {
	Name       string `json:"name"`
	MacAddress string `json:"mac_address,omitempty"`
	IsVirtual  bool   `json:"is_virtual"`
}

// HostInfo holds a one-shot picture of the machine a review session
// runs on. Every field is best-effort: collectors that fail leave
// their fields at zero values rather than aborting the report.
type HostInfo struct {
	// CPU
	CPUModel   string  `json:"cpu_model"`
	CPUCores   int     `json:"cpu_cores"`
	CPUThreads int     `json:"cpu_threads"`
	CPUPercent float64 `json:"cpu_percent"`

	// Memory (in MB)
	MemTotalMB float64 `json:"mem_total_mb"`
	MemUsedMB  float64 `json:"mem_used_mb"`
	MemPercent float64 `json:"mem_percent"`

	// Disk (in GB) at DiskPath
	DiskPath    string  `json:"disk_path"`
	DiskTotalGB float64 `json:"disk_total_gb"`
	DiskUsedGB  float64 `json:"disk_used_gb"`
	DiskFreeGB  float64 `json:"disk_free_gb"`
	DiskPercent float64 `json:"disk_percent"`

	// Load Average (Unix)
	LoadAvg1  float64 `json:"load_avg_1"`
	LoadAvg5  float64 `json:"load_avg_5"`
	LoadAvg15 float64 `json:"load_avg_15"`

	// Network interfaces (optional)
	NICs []NetworkInterface `json:"nics,omitempty"`
}

// CollectHost gathers current host statistics. diskPath selects the
// filesystem to report on (typically the journal directory); when empty
// or missing, the root filesystem is used instead.
func CollectHost(diskPath string) HostInfo {
	info := HostInfo{}

	collectCPUInfo(&info)
	collectMemoryInfo(&info)
	collectDiskInfo(&info, diskPath)
	collectLoadAvg(&info)
	collectNICs(&info)

	return info
}

func collectCPUInfo(info *HostInfo) {
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if cores, err := cpu.Counts(false); err == nil && cores > 0 {
		info.CPUCores = cores
	}
	if threads, err := cpu.Counts(true); err == nil && threads > 0 {
		info.CPUThreads = threads
	}
	// Blocking sample. Fine for a one-shot report, do not call in a
	// render loop.
	if percents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(percents) > 0 {
		info.CPUPercent = percents[0]
	}
}

func collectMemoryInfo(info *HostInfo) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}

	info.MemTotalMB = float64(vm.Total) / 1024 / 1024
	info.MemUsedMB = float64(vm.Used) / 1024 / 1024
	info.MemPercent = vm.UsedPercent
}

func collectDiskInfo(info *HostInfo, path string) {
	if path == "" {
		path = rootDiskPath()
	}
	usage, err := disk.Usage(path)
	if err != nil {
		// The journal directory may not exist before the first
		// decision is recorded.
		path = rootDiskPath()
		usage, err = disk.Usage(path)
		if err != nil {
			return
		}
	}

	info.DiskPath = path
	info.DiskTotalGB = float64(usage.Total) / 1024 / 1024 / 1024
	info.DiskUsedGB = float64(usage.Used) / 1024 / 1024 / 1024
	info.DiskFreeGB = float64(usage.Free) / 1024 / 1024 / 1024
	info.DiskPercent = usage.UsedPercent
}

func collectLoadAvg(info *HostInfo) {
	avg, err := load.Avg()
	if err != nil {
		return
	}
	info.LoadAvg1 = avg.Load1
	info.LoadAvg5 = avg.Load5
	info.LoadAvg15 = avg.Load15
}

func collectNICs(info *HostInfo) {
	netInfo, err := ghw.Network()
	if err != nil || netInfo == nil || len(netInfo.NICs) == 0 {
		return
	}

	nics := make([]NetworkInterface, 0, len(netInfo.NICs))
	for _, nic := range netInfo.NICs {
		if nic == nil || nic.Name == "" {
			continue
		}
		nics = append(nics, NetworkInterface{
			Name:       nic.Name,
			MacAddress: nic.MacAddress,
			IsVirtual:  nic.IsVirtual,
		})
	}
	info.NICs = nics
}

func rootDiskPath() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return drive + "\\"
	}
	return "/"
}
