package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunsMigrationsAndRecordsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.RecordLeaseEvent("offer", "192.168.1.100", "de:ad:be:ef:00:01", 42))
	require.NoError(t, l.RecordDNSQuery("host.lan", 1, false))

	var leaseCount int
	require.NoError(t, l.conn.QueryRow(`SELECT COUNT(*) FROM lease_events`).Scan(&leaseCount))
	assert.Equal(t, 1, leaseCount)

	var queryCount int
	require.NoError(t, l.conn.QueryRow(`SELECT COUNT(*) FROM dns_query_events`).Scan(&queryCount))
	assert.Equal(t, 1, queryCount)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	l1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l1.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()
}
