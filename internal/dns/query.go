package dns

import "fmt"

// MaxIncomingDNSMessageSize bounds incoming datagrams to a sane UDP payload.
const MaxIncomingDNSMessageSize = 1500

// Query is a parsed, single-question DNS request.
type Query struct {
	ID    uint16
	Flags uint16
	Q     Question
}

// RD reports whether the client set the Recursion Desired bit.
func (q Query) RD() bool { return q.Flags&RDFlag != 0 }

// ParseQuery parses a DNS query datagram: header plus exactly one question.
// Anything beyond the question section is ignored. This daemon only ever
// receives standard queries (opcode 0) with a single question; anything else
// is rejected so the caller can drop it per the input-drop error policy.
func ParseQuery(msg []byte) (Query, error) {
	if len(msg) > MaxIncomingDNSMessageSize {
		return Query{}, fmt.Errorf("%w: message too large (%d bytes)", ErrDNSError, len(msg))
	}
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Query{}, err
	}
	if h.Flags&QRFlag != 0 {
		return Query{}, fmt.Errorf("%w: QR flag set on incoming query", ErrDNSError)
	}
	if opcode := (h.Flags & OpcodeMask) >> 11; opcode != 0 {
		return Query{}, fmt.Errorf("%w: unsupported opcode %d", ErrDNSError, opcode)
	}
	if h.QDCount != 1 {
		return Query{}, fmt.Errorf("%w: unsupported question count %d", ErrDNSError, h.QDCount)
	}
	q, err := ParseQuestion(msg, &off)
	if err != nil {
		return Query{}, err
	}
	return Query{ID: h.ID, Flags: h.Flags, Q: q}, nil
}
