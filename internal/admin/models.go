// Package admin implements the optional read-only management HTTP API:
// health, runtime stats, and point-in-time views of the lease and zone
// tables. Adapted from the teacher's internal/api package, trimmed from a
// read-write configuration/filtering API down to status-reporting only —
// this daemon's mutable state lives in internal/store, not behind HTTP.
package admin

import "time"

// StatusResponse is a simple health-check response.
type StatusResponse struct {
	Status string `json:"status"`
}

// CPUStats mirrors the teacher's system CPU snapshot shape.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
}

// MemoryStats mirrors the teacher's system memory snapshot shape.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// StatsResponse reports process uptime plus a host resource snapshot.
type StatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	CPU           CPUStats  `json:"cpu"`
	Memory        MemoryStats `json:"memory"`
	LeasesInUse   int       `json:"leases_in_use"`
	PoolSize      int       `json:"pool_size"`
}

// LeaseListResponse is a point-in-time dump of the busy-address set.
type LeaseListResponse struct {
	Count      int      `json:"count"`
	Addresses  []string `json:"addresses"`
}

// ZoneRecordResponse is one zone entry rendered for the API.
type ZoneRecordResponse struct {
	Name string   `json:"name"`
	IPs  []string `json:"ips"`
	TTL  uint32   `json:"ttl"`
}

// ZoneListResponse is a point-in-time dump of the loaded zone table.
type ZoneListResponse struct {
	Count   int                  `json:"count"`
	Records []ZoneRecordResponse `json:"records"`
}
