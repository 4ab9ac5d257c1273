// Command leasetool dumps the busy-address set and zone table this daemon
// persists to disk, for operators inspecting state without hitting the
// admin API. Descended from the teacher's cmd/print-zone, generalized from
// a single zone file to either of this daemon's two JSON state files.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jroosing/netsvcd/internal/dhcpwire"
	"github.com/jroosing/netsvcd/internal/store"
)

func main() {
	var (
		busyPath = flag.String("busy", "", "path to the busy-address JSON file")
		zonePath = flag.String("zone", "", "path to the zone JSON file")
	)
	flag.Parse()

	if *busyPath == "" && *zonePath == "" {
		fmt.Fprintln(os.Stderr, "usage: leasetool -busy <file> | -zone <file>")
		os.Exit(2)
	}

	if *busyPath != "" {
		if err := printBusySet(*busyPath); err != nil {
			fmt.Fprintf(os.Stderr, "leasetool: %v\n", err)
			os.Exit(1)
		}
	}
	if *zonePath != "" {
		if err := printZone(*zonePath); err != nil {
			fmt.Fprintf(os.Stderr, "leasetool: %v\n", err)
			os.Exit(1)
		}
	}
}

func printBusySet(path string) error {
	bs, err := store.LoadBusySet(path)
	if err != nil {
		return err
	}
	snap := bs.Snapshot()
	addrs := make([]string, len(snap))
	for i, v := range snap {
		addrs[i] = dhcpwire.Uint32ToIP(v).String()
	}
	sort.Strings(addrs)

	fmt.Printf("BUSY ADDRESSES (%d):\n", len(addrs))
	for _, a := range addrs {
		fmt.Printf("  %s\n", a)
	}
	return nil
}

func printZone(path string) error {
	zone, err := store.LoadZoneTable(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(zone))
	for name := range zone {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("ZONE (%d names):\n", len(names))
	for _, name := range names {
		entry := zone[name]
		fmt.Printf("  %s %d IN A %v\n", name, entry.TTL, entry.IPs)
	}
	return nil
}
