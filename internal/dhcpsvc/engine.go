// Package dhcpsvc implements the DHCP lease engine: message-type dispatch,
// the lowest-free pool allocator, and RFC 2131 §4.1 destination selection.
// Grounded on the teacher's query_handler.go shape (one Handle entry point
// returning a result the I/O loop sends verbatim) but single-threaded per
// SPEC_FULL.md §5 — no worker pool, no goroutine per datagram.
package dhcpsvc

import (
	"log/slog"
	"net"

	"github.com/jroosing/netsvcd/internal/audit"
	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/dhcpwire"
	"github.com/jroosing/netsvcd/internal/store"
)

const (
	portServer = 67
	portClient = 68
)

// Result is what the I/O loop needs to relay a DHCP reply: the wire bytes
// and the UDP destination RFC 2131 §4.1 selects. Ok is false when the
// engine produced no reply (malformed frame, unsupported message type,
// pool exhausted).
type Result struct {
	Bytes []byte
	Dest  *net.UDPAddr
	Ok    bool
}

// Engine is the lease engine. It exclusively owns the busy-address set;
// nothing outside Handle (and the admin API's read-only Snapshot) touches it.
type Engine struct {
	cfg    *config.Config
	busy   *store.BusySet
	logger *slog.Logger
	audit  *audit.Log // nil when the audit log is disabled
}

// New constructs a lease engine over the given configuration and busy set.
// auditLog may be nil; every call site checks before writing to it.
func New(cfg *config.Config, busy *store.BusySet, logger *slog.Logger, auditLog *audit.Log) *Engine {
	return &Engine{cfg: cfg, busy: busy, logger: logger, audit: auditLog}
}

// Handle parses a raw datagram and dispatches it to the appropriate
// message-type handler. Malformed frames are logged at debug level and
// dropped, matching the input-drop error policy (SPEC_FULL.md §7).
func (e *Engine) Handle(msg []byte) Result {
	frame, err := dhcpwire.Parse(msg)
	if err != nil {
		e.logger.Debug("dropping malformed DHCP frame", "err", err)
		return Result{}
	}

	msgType, ok := frame.MessageType()
	if !ok {
		e.logger.Debug("dropping DHCP frame with no message type option")
		return Result{}
	}

	switch msgType {
	case dhcpwire.MsgDiscover:
		return e.handleDiscover(frame)
	case dhcpwire.MsgRequest:
		return e.handleRequest(frame)
	default:
		// DECLINE, RELEASE, INFORM and anything else: out of scope, drop.
		e.logger.Debug("dropping out-of-scope DHCP message type", "type", msgType)
		return Result{}
	}
}

func (e *Engine) handleDiscover(req dhcpwire.Frame) Result {
	addr, found := e.nextFreeAddress()
	if !found {
		e.logger.Info("DHCP pool exhausted, dropping DISCOVER", "xid", req.XID)
		return Result{}
	}

	reply := dhcpwire.ReplyFrame(req, dhcpwire.Uint32ToBytes(addr))
	bytes, err := e.encodeLease(reply, dhcpwire.MsgOffer)
	if err != nil {
		e.logger.Error("failed to encode OFFER", "err", err)
		return Result{}
	}

	e.logger.Info("DHCP OFFER", "xid", req.XID, "yiaddr", dhcpwire.Uint32ToIP(addr))
	e.recordLeaseEvent("offer", dhcpwire.Uint32ToIP(addr), req)
	return Result{Bytes: bytes, Dest: e.destination(req, dhcpwire.Uint32ToBytes(addr), false), Ok: true}
}

func (e *Engine) handleRequest(req dhcpwire.Frame) Result {
	reqIP, ok := req.RequestedIP()
	if !ok {
		e.logger.Debug("dropping REQUEST with no requested-IP option", "xid", req.XID)
		return Result{}
	}
	addr := dhcpwire.BytesToUint32(reqIP)

	if addr < e.cfg.PoolStart || addr > e.cfg.PoolEnd || e.busy.Contains(addr) {
		return e.nak(req)
	}

	if err := e.busy.Add(addr); err != nil {
		e.logger.Error("failed to persist busy-address set", "err", err)
		// Reference behavior: the ACK is still sent (SPEC_FULL.md §7).
	}

	reply := dhcpwire.ReplyFrame(req, reqIP)
	bytes, err := e.encodeLease(reply, dhcpwire.MsgACK)
	if err != nil {
		e.logger.Error("failed to encode ACK", "err", err)
		return Result{}
	}

	e.logger.Info("DHCP ACK", "xid", req.XID, "yiaddr", dhcpwire.Uint32ToIP(addr))
	e.recordLeaseEvent("ack", dhcpwire.Uint32ToIP(addr), req)
	return Result{Bytes: bytes, Dest: e.destination(req, reqIP, false), Ok: true}
}

func (e *Engine) nak(req dhcpwire.Frame) Result {
	reply := dhcpwire.ReplyFrame(req, [4]byte{})
	options := []dhcpwire.Option{
		{Code: dhcpwire.OptMessageType, Data: []byte{dhcpwire.MsgNAK}},
		{Code: dhcpwire.OptServerID, Data: sliceOf(dhcpwire.IPToBytes(e.cfg.DHCPServerIP))},
		{Code: dhcpwire.OptMessage, Data: []byte("address not available")},
	}
	bytes, err := reply.Marshal(options)
	if err != nil {
		e.logger.Error("failed to encode NAK", "err", err)
		return Result{}
	}
	e.logger.Info("DHCP NAK", "xid", req.XID)
	e.recordLeaseEvent("nak", net.IPv4zero, req)
	return Result{Bytes: bytes, Dest: e.destination(req, [4]byte{}, true), Ok: true}
}

// recordLeaseEvent writes to the audit log if one is configured. Failures
// are logged but never change the reply already sent to the client.
func (e *Engine) recordLeaseEvent(event string, addr net.IP, req dhcpwire.Frame) {
	if e.audit == nil {
		return
	}
	mac := net.HardwareAddr(req.CHAddr[:min(req.HLen, byte(len(req.CHAddr)))]).String()
	if err := e.audit.RecordLeaseEvent(event, addr.String(), mac, req.XID); err != nil {
		e.logger.Error("failed to write audit log entry", "err", err)
	}
}

// encodeLease builds the OFFER/ACK option block shared by both message
// types (SPEC_FULL.md §4.1).
func (e *Engine) encodeLease(reply dhcpwire.Frame, msgType byte) ([]byte, error) {
	options := []dhcpwire.Option{
		{Code: dhcpwire.OptMessageType, Data: []byte{msgType}},
		{Code: dhcpwire.OptServerID, Data: sliceOf(dhcpwire.IPToBytes(e.cfg.DHCPServerIP))},
		{Code: dhcpwire.OptLeaseTime, Data: uint32Bytes(e.cfg.LeaseSeconds)},
		{Code: dhcpwire.OptSubnetMask, Data: sliceOf(dhcpwire.IPToBytes(e.cfg.SubnetMask))},
		{Code: dhcpwire.OptRouter, Data: sliceOf(dhcpwire.IPToBytes(e.cfg.RouterIP))},
		{Code: dhcpwire.OptDNS, Data: dnsOption(e.cfg.DNSIP)},
	}
	return reply.Marshal(options)
}

// nextFreeAddress scans the pool ascending and returns the first address
// not already in the busy-address set. O(pool size); fine for the small
// pools this daemon manages (SPEC_FULL.md §4.2).
func (e *Engine) nextFreeAddress() (uint32, bool) {
	for ip := e.cfg.PoolStart; ip <= e.cfg.PoolEnd; ip++ {
		if !e.busy.Contains(ip) {
			return ip, true
		}
		if ip == e.cfg.PoolEnd {
			break
		}
	}
	return 0, false
}

// destination implements RFC 2131 §4.1 unicast/broadcast selection.
// forceBroadcast is set for NAK, which always broadcasts.
func (e *Engine) destination(req dhcpwire.Frame, yiaddr [4]byte, forceBroadcast bool) *net.UDPAddr {
	zero := [4]byte{}

	if forceBroadcast {
		return e.broadcastAddr()
	}
	if req.GIAddr != zero {
		return &net.UDPAddr{IP: net.IP(req.GIAddr[:]), Port: portServer}
	}
	if req.CIAddr != zero {
		return &net.UDPAddr{IP: net.IP(req.CIAddr[:]), Port: portClient}
	}
	if !req.Broadcast() {
		return &net.UDPAddr{IP: net.IP(yiaddr[:]), Port: portClient}
	}
	return e.broadcastAddr()
}

func (e *Engine) broadcastAddr() *net.UDPAddr {
	ip := e.cfg.DHCPServerIP.To4()
	mask := e.cfg.SubnetMask.To4()
	b := make(net.IP, 4)
	for i := range 4 {
		b[i] = (ip[i] & mask[i]) | ^mask[i]
	}
	return &net.UDPAddr{IP: b, Port: portClient}
}

func sliceOf(b [4]byte) []byte { return append([]byte(nil), b[:]...) }

func uint32Bytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// dnsOption encodes option 6 with two 4-byte server entries, the second
// being 0.0.0.0, matching the legacy observed reference behavior
// (SPEC_FULL.md §4.1).
func dnsOption(dnsIP net.IP) []byte {
	out := make([]byte, 8)
	copy(out[0:4], dnsIP.To4())
	return out
}
