package dnssvc

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/jroosing/netsvcd/internal/dns"
)

// pending tracks one query forwarded upstream, keyed by the transaction ID
// this daemon assigned it (not the client's original ID, which may collide
// across clients).
type pending struct {
	client   *net.UDPAddr
	origID   uint16
	deadline time.Time
}

// Forwarder relays queries this daemon can't answer locally to a single
// upstream resolver over a dedicated socket (the resolved Open Question in
// SPEC_FULL.md §9: a dedicated upstream socket rather than multiplexing the
// client-facing one). It rewrites the transaction ID on the way out and
// correlates the reply back to the original client on the way in, the same
// byte-patching idiom as the teacher's PatchTransactionID.
type Forwarder struct {
	conn    *net.UDPConn
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[uint16]pending
}

// NewForwarder dials a dedicated UDP socket to upstream. timeout bounds how
// long an in-flight entry is kept before the sweep goroutine discards it.
func NewForwarder(upstream string, timeout time.Duration, logger *slog.Logger) (*Forwarder, error) {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(upstream, "53"))
	if err != nil {
		return nil, fmt.Errorf("resolving upstream DNS address %q: %w", upstream, err)
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing upstream DNS server %q: %w", upstream, err)
	}
	return &Forwarder{
		conn:     conn,
		timeout:  timeout,
		logger:   logger,
		inflight: make(map[uint16]pending),
	}, nil
}

// Close releases the upstream socket.
func (f *Forwarder) Close() error {
	return f.conn.Close()
}

// Forward rewrites msg's transaction ID to a fresh upstream-scoped one,
// sets the RA bit, records the client to reply to, and sends it upstream.
func (f *Forwarder) Forward(msg []byte, client *net.UDPAddr, origID uint16) error {
	f.mu.Lock()
	upstreamID := f.freshIDLocked()
	f.inflight[upstreamID] = pending{
		client:   client,
		origID:   origID,
		deadline: time.Now().Add(f.timeout),
	}
	f.mu.Unlock()

	out := dns.WithRecursionAvailable(dns.WithID(msg, upstreamID))
	if _, err := f.conn.Write(out); err != nil {
		f.mu.Lock()
		delete(f.inflight, upstreamID)
		f.mu.Unlock()
		return fmt.Errorf("forwarding query upstream: %w", err)
	}
	return nil
}

// freshIDLocked picks a 16-bit ID not already in flight by rejection
// sampling. f.mu must already be held. The in-flight table is small enough
// (bounded by Forward's timeout and query rate) that collisions are rare,
// so a handful of resamples is always enough in practice.
func (f *Forwarder) freshIDLocked() uint16 {
	for {
		//nolint:gosec // transaction-ID selection, not a cryptographic use
		id := uint16(rand.Intn(1 << 16))
		if _, busy := f.inflight[id]; !busy {
			return id
		}
	}
}

// ReadUpstreamReply reads one datagram from the upstream socket. Call this
// from the daemon's upstream receive loop.
func (f *Forwarder) ReadUpstreamReply(buf []byte) (int, error) {
	return f.conn.Read(buf)
}

// Resolve correlates an upstream reply with the client that originated it,
// restoring the client's transaction ID and clearing the authoritative bit
// before relaying it. ok is false if the reply's transaction ID matches no
// known in-flight query (already answered, expired, or spoofed).
func (f *Forwarder) Resolve(reply []byte) (client *net.UDPAddr, out []byte, ok bool) {
	upstreamID, err := dns.ReadID(reply)
	if err != nil {
		return nil, nil, false
	}

	f.mu.Lock()
	p, found := f.inflight[upstreamID]
	if found {
		delete(f.inflight, upstreamID)
	}
	f.mu.Unlock()
	if !found {
		f.logger.Debug("dropping upstream reply with unknown transaction ID", "id", upstreamID)
		return nil, nil, false
	}

	out = dns.WithID(reply, p.origID)
	out = dns.WithoutAuthoritative(out)
	out = dns.WithRecursionAvailable(out)
	return p.client, out, true
}

// Sweep removes in-flight entries past their deadline. Intended to run on a
// ticker (SPEC_FULL.md §9 decides a 1-second sweep interval against a
// 5-second default timeout).
func (f *Forwarder) Sweep(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	expired := 0
	for id, p := range f.inflight {
		if now.After(p.deadline) {
			delete(f.inflight, id)
			expired++
		}
	}
	return expired
}
