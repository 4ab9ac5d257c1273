package admin

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/dhcpwire"
	"github.com/jroosing/netsvcd/internal/store"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	busy, err := store.LoadBusySet(t.TempDir() + "/busy.json")
	require.NoError(t, err)
	require.NoError(t, busy.Add(dhcpwire.IPToUint32(net.ParseIP("192.168.1.100"))))

	zone := store.ZoneTable{
		"host.lan": store.ZoneEntry{IPs: []net.IP{net.ParseIP("192.168.1.100").To4()}, TTL: 60},
	}
	cfg := &config.Config{PoolStart: dhcpwire.IPToUint32(net.ParseIP("192.168.1.100")), PoolEnd: dhcpwire.IPToUint32(net.ParseIP("192.168.1.200"))}

	h := NewHandler(cfg, busy, zone)
	r := gin.New()
	RegisterRoutes(r, h)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthReportsOK(t *testing.T) {
	r := testRouter(t)
	w := doGet(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStatsReportsPoolAndLeaseCounts(t *testing.T) {
	r := testRouter(t)
	w := doGet(r, "/api/v1/stats")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.LeasesInUse)
	assert.Equal(t, 101, resp.PoolSize)
}

func TestLeasesListsBusyAddresses(t *testing.T) {
	r := testRouter(t)
	w := doGet(r, "/api/v1/leases")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp LeaseListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"192.168.1.100"}, resp.Addresses)
}

func TestZoneListsRecordsSorted(t *testing.T) {
	r := testRouter(t)
	w := doGet(r, "/api/v1/zone")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ZoneListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "host.lan", resp.Records[0].Name)
	assert.Equal(t, uint32(60), resp.Records[0].TTL)
}
