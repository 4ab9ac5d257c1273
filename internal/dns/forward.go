package dns

import (
	"encoding/binary"
	"fmt"
)

// Forwarding never re-parses and re-serializes a full packet: it patches the
// handful of header bytes that change in place on a copy of the wire bytes,
// the same byte-patching idiom used for rewriting transaction IDs on
// upstream DNS traffic.

// ReadID reads the 16-bit transaction ID from a raw DNS message.
func ReadID(msg []byte) (uint16, error) {
	if len(msg) < HeaderSize {
		return 0, fmt.Errorf("%w: message shorter than DNS header", ErrDNSError)
	}
	return binary.BigEndian.Uint16(msg[0:2]), nil
}

// ReadFlags reads the 16-bit flags field from a raw DNS message.
func ReadFlags(msg []byte) (uint16, error) {
	if len(msg) < HeaderSize {
		return 0, fmt.Errorf("%w: message shorter than DNS header", ErrDNSError)
	}
	return binary.BigEndian.Uint16(msg[2:4]), nil
}

// WithID returns a copy of msg with its transaction ID replaced.
func WithID(msg []byte, id uint16) []byte {
	out := append([]byte(nil), msg...)
	binary.BigEndian.PutUint16(out[0:2], id)
	return out
}

// WithRecursionAvailable returns a copy of msg with the RA bit set.
func WithRecursionAvailable(msg []byte) []byte {
	out := append([]byte(nil), msg...)
	flags := binary.BigEndian.Uint16(out[2:4])
	binary.BigEndian.PutUint16(out[2:4], flags|RAFlag)
	return out
}

// WithoutAuthoritative returns a copy of msg with the AA bit cleared, used
// when relaying an upstream reply back to a client: the reply no longer
// originates from an authority this daemon controls.
func WithoutAuthoritative(msg []byte) []byte {
	out := append([]byte(nil), msg...)
	flags := binary.BigEndian.Uint16(out[2:4])
	binary.BigEndian.PutUint16(out[2:4], flags&^AAFlag)
	return out
}

// IsResponse reports whether the QR bit is set in the given flags word.
func IsResponse(flags uint16) bool {
	return flags&QRFlag != 0
}
