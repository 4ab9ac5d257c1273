package admin

import (
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	gopsmem "github.com/shirou/gopsutil/v3/mem"

	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/dhcpwire"
	"github.com/jroosing/netsvcd/internal/store"
)

// Handler holds the dependencies the admin endpoints read from. It never
// mutates the lease engine or resolver; it only takes snapshots.
type Handler struct {
	cfg       *config.Config
	busy      *store.BusySet
	zone      store.ZoneTable
	startTime time.Time
}

// NewHandler constructs a Handler over the shared, already-running state.
func NewHandler(cfg *config.Config, busy *store.BusySet, zone store.ZoneTable) *Handler {
	return &Handler{cfg: cfg, busy: busy, zone: zone, startTime: time.Now()}
}

// Health reports liveness only; it does not probe the DHCP or DNS sockets.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Stats reports process uptime and a host resource snapshot, the same
// shape the teacher's Stats handler reports, minus the DNS-query counters
// this daemon doesn't track.
func (h *Handler) Stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := MemoryStats{}
	if vmStat, err := gopsmem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	cpuStats := CPUStats{NumCPU: runtime.NumCPU()}
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		cpuStats.UsedPercent = pct[0]
	}

	poolSize := int(h.cfg.PoolEnd-h.cfg.PoolStart) + 1
	c.JSON(http.StatusOK, StatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
		LeasesInUse:   len(h.busy.Snapshot()),
		PoolSize:      poolSize,
	})
}

// Leases returns the current busy-address set.
func (h *Handler) Leases(c *gin.Context) {
	snap := h.busy.Snapshot()
	addrs := make([]string, len(snap))
	for i, v := range snap {
		addrs[i] = dhcpwire.Uint32ToIP(v).String()
	}
	c.JSON(http.StatusOK, LeaseListResponse{Count: len(addrs), Addresses: addrs})
}

// Zone returns the loaded local zone table.
func (h *Handler) Zone(c *gin.Context) {
	records := make([]ZoneRecordResponse, 0, len(h.zone))
	for name, entry := range h.zone {
		ips := make([]string, len(entry.IPs))
		for i, ip := range entry.IPs {
			ips[i] = ip.String()
		}
		records = append(records, ZoneRecordResponse{Name: name, IPs: ips, TTL: entry.TTL})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	c.JSON(http.StatusOK, ZoneListResponse{Count: len(records), Records: records})
}
