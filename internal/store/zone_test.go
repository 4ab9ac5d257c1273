package store

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadZoneTableMissingFileIsEmpty(t *testing.T) {
	zone, err := LoadZoneTable(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, zone)
}

func TestLoadZoneTableParsesAndNormalizesNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.json")
	body := `{"Host.LAN.": {"IP": ["192.168.1.5", "192.168.1.6"], "TTL": 300}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	zone, err := LoadZoneTable(path)
	require.NoError(t, err)
	entry, ok := zone["host.lan"]
	require.True(t, ok)
	assert.Equal(t, uint32(300), entry.TTL)
	assert.Equal(t, net.ParseIP("192.168.1.5").To4(), entry.IPs[0])
}

func TestLoadZoneTableRejectsInvalidIP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host.lan": {"IP": ["not-an-ip"], "TTL": 60}}`), 0o644))
	_, err := LoadZoneTable(path)
	require.Error(t, err)
}

func TestLoadZoneTableRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := LoadZoneTable(path)
	require.Error(t, err)
}
