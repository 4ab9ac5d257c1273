package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBusySetMissingFileIsEmpty(t *testing.T) {
	bs, err := LoadBusySet(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, bs.Snapshot())
}

func TestLoadBusySetRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := LoadBusySet(path)
	require.Error(t, err)
}

func TestLoadBusySetDedupesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 1]`), 0o644))
	bs, err := LoadBusySet(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, bs.Snapshot())
}

func TestBusySetAddPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.json")
	bs, err := LoadBusySet(path)
	require.NoError(t, err)

	require.NoError(t, bs.Add(10))
	require.NoError(t, bs.Add(20))
	assert.True(t, bs.Contains(10))
	assert.False(t, bs.Contains(99))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []uint32
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, []uint32{10, 20}, onDisk)
}

func TestBusySetAddIsIdempotent(t *testing.T) {
	bs, err := LoadBusySet(filepath.Join(t.TempDir(), "busy.json"))
	require.NoError(t, err)
	require.NoError(t, bs.Add(5))
	require.NoError(t, bs.Add(5))
	assert.Equal(t, []uint32{5}, bs.Snapshot())
}
