package dhcpwire

import (
	"encoding/binary"
	"net"
)

// DHCP option codes used by this daemon (RFC 2132).
const (
	OptPad           byte = 0
	OptSubnetMask    byte = 1
	OptRouter        byte = 3
	OptDNS           byte = 6
	OptRequestedIP   byte = 50
	OptLeaseTime     byte = 51
	OptMessageType   byte = 53
	OptServerID      byte = 54
	OptMessage       byte = 56
	OptEnd           byte = 255
)

// DHCP message types (option 53 values).
const (
	MsgDiscover byte = 1
	MsgOffer    byte = 2
	MsgRequest  byte = 3
	MsgDecline  byte = 4
	MsgACK      byte = 5
	MsgNAK      byte = 6
	MsgRelease  byte = 7
	MsgInform   byte = 8
)

// IPToBytes converts an IPv4 address to its 4-byte wire form. It panics if
// ip is not a valid IPv4 address; callers are expected to validate
// configuration at startup.
func IPToBytes(ip net.IP) [4]byte {
	v4 := ip.To4()
	if v4 == nil {
		panic("dhcpwire: not an IPv4 address: " + ip.String())
	}
	var out [4]byte
	copy(out[:], v4)
	return out
}

// IPToUint32 converts an IPv4 address to its big-endian numeric form, the
// representation used by the persisted busy-address set.
func IPToUint32(ip net.IP) uint32 {
	b := IPToBytes(ip)
	return binary.BigEndian.Uint32(b[:])
}

// Uint32ToIP converts a big-endian numeric IPv4 address back to net.IP.
func Uint32ToIP(v uint32) net.IP {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return net.IP(b)
}

// BytesToUint32 converts a 4-byte wire address to its numeric form.
func BytesToUint32(b [4]byte) uint32 {
	return binary.BigEndian.Uint32(b[:])
}

// Uint32ToBytes converts a numeric IPv4 address to its 4-byte wire form.
func Uint32ToBytes(v uint32) [4]byte {
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], v)
	return out
}
