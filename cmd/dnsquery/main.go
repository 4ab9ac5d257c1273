// Command dnsquery sends a single A-record query at a DNS server and
// prints the answers. Adapted from the teacher's cmd/dnsquery, narrowed to
// the A-only answer shape this daemon itself understands — it has no
// general-purpose resource-record parser to fall back on.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/jroosing/netsvcd/internal/dns"
)

func main() {
	var (
		server  = flag.String("server", "127.0.0.1:53", "DNS server HOST:PORT")
		name    = flag.String("name", "example.com", "query name")
		timeout = flag.Duration("timeout", 2*time.Second, "timeout")
	)
	flag.Parse()

	resp, err := queryUDP(*server, *name, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnsquery: %v\n", err)
		os.Exit(1)
	}

	ips, err := parseAAnswers(resp)
	if err != nil {
		fmt.Printf("received %d bytes (unparseable as an A-only reply): %v\n", len(resp), err)
		return
	}
	if len(ips) == 0 {
		fmt.Println("no A answers")
		return
	}
	for _, ip := range ips {
		fmt.Println(ip)
	}
}

func queryUDP(server, name string, timeout time.Duration) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp4", server)
	if err != nil {
		return nil, err
	}
	c, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	q := dns.Question{Name: name, Type: uint16(dns.TypeA), Class: uint16(dns.ClassIN)}
	qb, err := q.Marshal()
	if err != nil {
		return nil, err
	}
	h := dns.Header{ID: 0x1234, Flags: dns.RDFlag, QDCount: 1}
	hb, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	req := append(hb, qb...)

	if err := c.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	if _, err := c.Write(req); err != nil {
		return nil, err
	}
	buf := make([]byte, dns.MaxIncomingDNSMessageSize)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// parseAAnswers walks the wire format directly to extract A-record
// answers, skipping the echoed question. It understands only what
// BuildAnswer produces: pointer-compressed names and 4-byte RDATA.
func parseAAnswers(msg []byte) ([]net.IP, error) {
	off := 0
	h, err := dns.ParseHeader(msg, &off)
	if err != nil {
		return nil, err
	}
	for range h.QDCount {
		if _, err := dns.ParseQuestion(msg, &off); err != nil {
			return nil, err
		}
	}

	ips := make([]net.IP, 0, h.ANCount)
	for range h.ANCount {
		if _, err := dns.DecodeName(msg, &off); err != nil {
			return nil, err
		}
		if off+10 > len(msg) {
			return nil, fmt.Errorf("truncated answer record")
		}
		rtype := binary.BigEndian.Uint16(msg[off : off+2])
		off += 8 // TYPE, CLASS, TTL
		rdlen := int(binary.BigEndian.Uint16(msg[off : off+2]))
		off += 2
		if off+rdlen > len(msg) {
			return nil, fmt.Errorf("truncated answer RDATA")
		}
		if rtype == uint16(dns.TypeA) && rdlen == 4 {
			ips = append(ips, net.IP(msg[off:off+4]))
		}
		off += rdlen
	}
	return ips, nil
}
