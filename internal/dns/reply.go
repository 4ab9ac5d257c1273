package dns

import (
	"encoding/binary"
	"fmt"
	"net"
)

// answerPointer is the compression pointer to the question name at offset 12,
// the fixed position of the first (and only) question immediately after the
// 12-byte header (RFC 1035 Section 4.1.4).
const answerPointer uint16 = 0xC00C

// BuildAnswer constructs a complete authoritative A-record reply for a query
// answered from the local zone table. The question section is re-encoded
// from q rather than copied from the request bytes, so its name is written
// as q carries it (lowercased when q came from ParseQuestion); each answer
// points back at it via compression rather than repeating the name.
func BuildAnswer(reqID uint16, rd bool, q Question, ips []net.IP, ttl uint32) ([]byte, error) {
	flags := QRFlag | AAFlag | RAFlag
	if rd {
		flags |= RDFlag
	}
	h := Header{
		ID:      reqID,
		Flags:   flags,
		QDCount: 1,
		ANCount: uint16(len(ips)), //nolint:gosec // zone answer lists are tiny
	}
	hb, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	qb, err := q.Marshal()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(hb)+len(qb)+len(ips)*16)
	out = append(out, hb...)
	out = append(out, qb...)
	for _, ip := range ips {
		rr, err := marshalPointerAnswer(ip, ttl)
		if err != nil {
			return nil, err
		}
		out = append(out, rr...)
	}
	return out, nil
}

// marshalPointerAnswer encodes a single A-record answer using name
// compression: NAME=pointer(2) TYPE(2) CLASS(2) TTL(4) RDLENGTH(2) RDATA(4).
func marshalPointerAnswer(ip net.IP, ttl uint32) ([]byte, error) {
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("%w: not an IPv4 address: %s", ErrDNSError, ip)
	}
	out := make([]byte, 12)
	binary.BigEndian.PutUint16(out[0:2], answerPointer)
	binary.BigEndian.PutUint16(out[2:4], uint16(TypeA))
	binary.BigEndian.PutUint16(out[4:6], uint16(ClassIN))
	binary.BigEndian.PutUint32(out[6:10], ttl)
	binary.BigEndian.PutUint16(out[10:12], 4)
	return append(out, v4...), nil
}
