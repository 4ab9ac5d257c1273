// Package store implements the state-store adapter: loading and persisting
// the busy-address set and the zone table as the plain JSON files the
// daemon's external contract promises, adapted from the teacher's
// database package's load/persist shape but backed by flat files instead
// of SQLite, since the wire contract (SPEC_FULL.md §6) fixes the format.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// BusySet is the ordered-insertion set of IPv4 addresses (as big-endian
// uint32) already handed out by the DHCP lease engine. It is the lease
// engine's exclusively-owned mutable state; the mutex exists only so the
// read-only admin API can take a consistent snapshot from another
// goroutine, never to coordinate with another writer.
type BusySet struct {
	mu      sync.Mutex
	path    string
	order   []uint32
	members map[uint32]struct{}
}

// LoadBusySet reads the busy-address file. A missing file yields an empty,
// set, not an error; malformed JSON is a startup-fatal error.
func LoadBusySet(path string) (*BusySet, error) {
	bs := &BusySet{path: path, members: make(map[uint32]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bs, nil
		}
		return nil, fmt.Errorf("reading busy-address file %q: %w", path, err)
	}
	var raw []uint32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing busy-address file %q: %w", path, err)
	}
	for _, v := range raw {
		if _, dup := bs.members[v]; dup {
			continue
		}
		bs.order = append(bs.order, v)
		bs.members[v] = struct{}{}
	}
	return bs, nil
}

// Contains reports whether ip is already marked busy.
func (bs *BusySet) Contains(ip uint32) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	_, ok := bs.members[ip]
	return ok
}

// Add marks ip busy and synchronously rewrites the backing file. If the
// write fails the address is still recorded in memory and the error is
// returned for the caller to log — the reference behavior still sends the
// ACK on a persist failure (SPEC_FULL.md §7).
func (bs *BusySet) Add(ip uint32) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if _, dup := bs.members[ip]; dup {
		return nil
	}
	bs.order = append(bs.order, ip)
	bs.members[ip] = struct{}{}
	return bs.persistLocked()
}

// Snapshot returns a copy of the set in insertion order, for the admin API.
func (bs *BusySet) Snapshot() []uint32 {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	out := make([]uint32, len(bs.order))
	copy(out, bs.order)
	return out
}

func (bs *BusySet) persistLocked() error {
	data, err := json.MarshalIndent(bs.order, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding busy-address set: %w", err)
	}
	if err := os.WriteFile(bs.path, data, 0o644); err != nil {
		return fmt.Errorf("writing busy-address file %q: %w", bs.path, err)
	}
	return nil
}
