package dhcpwire

import (
	"encoding/binary"
	"fmt"
)

// Fixed BOOTP header layout (RFC 2131 / RFC 951).
const (
	offOp        = 0
	offHType     = 1
	offHLen      = 2
	offHops      = 3
	offXID       = 4
	offSecs      = 8
	offFlags     = 10
	offCIAddr    = 12
	offYIAddr    = 16
	offSIAddr    = 20
	offGIAddr    = 24
	offCHAddr    = 28
	chaddrLen    = 16
	offSName     = 44
	snameLen     = 64
	offFile      = 108
	fileLen      = 128
	offCookie    = 236
	offOptions   = 240
	HeaderSize   = 240
	MagicCookie  = 0x63825363
	BroadcastBit = 0x8000

	// Op codes.
	OpRequest = 1
	OpReply   = 2
)

// Frame is a parsed DHCP/BOOTP datagram: the fixed header fields plus the
// options that followed the magic cookie, keyed by option code.
type Frame struct {
	Op      byte
	HType   byte
	HLen    byte
	Hops    byte
	XID     uint32
	Secs    uint16
	Flags   uint16
	CIAddr  [4]byte
	YIAddr  [4]byte
	SIAddr  [4]byte
	GIAddr  [4]byte
	CHAddr  [chaddrLen]byte
	SName   [snameLen]byte
	File    [fileLen]byte
	Options map[byte][]byte
}

// Broadcast reports whether the client set the broadcast flag bit.
func (f Frame) Broadcast() bool {
	return f.Flags&BroadcastBit != 0
}

// MessageType returns the value of option 53 (DHCP Message Type), if present.
func (f Frame) MessageType() (byte, bool) {
	v, ok := f.Options[OptMessageType]
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}

// RequestedIP returns option 50 (Requested IP Address), if present.
func (f Frame) RequestedIP() ([4]byte, bool) {
	v, ok := f.Options[OptRequestedIP]
	if !ok || len(v) != 4 {
		return [4]byte{}, false
	}
	var ip [4]byte
	copy(ip[:], v)
	return ip, true
}

// Parse interprets a datagram as a BOOTP header followed by DHCP options.
// Option parsing stops at the end option (0xFF); unknown options are
// retained but never interpreted. A missing magic cookie, a truncated
// header, or a missing end option is rejected.
func Parse(msg []byte) (Frame, error) {
	if len(msg) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: frame shorter than BOOTP header (%d bytes)", ErrMalformed, len(msg))
	}
	if binary.BigEndian.Uint32(msg[offCookie:offCookie+4]) != MagicCookie {
		return Frame{}, fmt.Errorf("%w: bad magic cookie", ErrMalformed)
	}

	var f Frame
	f.Op = msg[offOp]
	f.HType = msg[offHType]
	f.HLen = msg[offHLen]
	f.Hops = msg[offHops]
	f.XID = binary.BigEndian.Uint32(msg[offXID : offXID+4])
	f.Secs = binary.BigEndian.Uint16(msg[offSecs : offSecs+2])
	f.Flags = binary.BigEndian.Uint16(msg[offFlags : offFlags+2])
	copy(f.CIAddr[:], msg[offCIAddr:offCIAddr+4])
	copy(f.YIAddr[:], msg[offYIAddr:offYIAddr+4])
	copy(f.SIAddr[:], msg[offSIAddr:offSIAddr+4])
	copy(f.GIAddr[:], msg[offGIAddr:offGIAddr+4])
	copy(f.CHAddr[:], msg[offCHAddr:offCHAddr+chaddrLen])
	copy(f.SName[:], msg[offSName:offSName+snameLen])
	copy(f.File[:], msg[offFile:offFile+fileLen])

	opts, err := parseOptions(msg[offOptions:])
	if err != nil {
		return Frame{}, err
	}
	f.Options = opts
	return f, nil
}

func parseOptions(b []byte) (map[byte][]byte, error) {
	opts := make(map[byte][]byte, 8)
	i := 0
	sawEnd := false
	for i < len(b) {
		code := b[i]
		if code == OptPad {
			i++
			continue
		}
		if code == OptEnd {
			sawEnd = true
			break
		}
		if i+1 >= len(b) {
			return nil, fmt.Errorf("%w: truncated option %d", ErrMalformed, code)
		}
		length := int(b[i+1])
		start := i + 2
		if start+length > len(b) {
			return nil, fmt.Errorf("%w: option %d length exceeds frame", ErrMalformed, code)
		}
		val := make([]byte, length)
		copy(val, b[start:start+length])
		if _, exists := opts[code]; !exists {
			opts[code] = val
		}
		i = start + length
	}
	if !sawEnd {
		return nil, fmt.Errorf("%w: missing end option (0xFF)", ErrMalformed)
	}
	return opts, nil
}

// ReplyFrame clones the header fields of req into a response frame, setting
// Op to reply and YIAddr to yiaddr (the zero address for NAK). All other
// header fields — xid, secs, flags, ciaddr, siaddr, giaddr, chaddr, sname,
// file — are preserved verbatim, per RFC 2131 reply construction.
func ReplyFrame(req Frame, yiaddr [4]byte) Frame {
	reply := req
	reply.Op = OpReply
	reply.YIAddr = yiaddr
	reply.Options = nil
	return reply
}

// Option is a single DHCP option in the order it should be written.
type Option struct {
	Code byte
	Data []byte
}

// Marshal serializes the frame's fixed header followed by the given options
// in order, terminated with the end option (0xFF).
func (f Frame) Marshal(options []Option) ([]byte, error) {
	out := make([]byte, HeaderSize, HeaderSize+64)
	out[offOp] = f.Op
	out[offHType] = f.HType
	out[offHLen] = f.HLen
	out[offHops] = f.Hops
	binary.BigEndian.PutUint32(out[offXID:offXID+4], f.XID)
	binary.BigEndian.PutUint16(out[offSecs:offSecs+2], f.Secs)
	binary.BigEndian.PutUint16(out[offFlags:offFlags+2], f.Flags)
	copy(out[offCIAddr:offCIAddr+4], f.CIAddr[:])
	copy(out[offYIAddr:offYIAddr+4], f.YIAddr[:])
	copy(out[offSIAddr:offSIAddr+4], f.SIAddr[:])
	copy(out[offGIAddr:offGIAddr+4], f.GIAddr[:])
	copy(out[offCHAddr:offCHAddr+chaddrLen], f.CHAddr[:])
	copy(out[offSName:offSName+snameLen], f.SName[:])
	copy(out[offFile:offFile+fileLen], f.File[:])
	binary.BigEndian.PutUint32(out[offCookie:offCookie+4], MagicCookie)

	for _, opt := range options {
		if len(opt.Data) > 255 {
			return nil, fmt.Errorf("%w: option %d too long (%d bytes)", ErrMalformed, opt.Code, len(opt.Data))
		}
		out = append(out, opt.Code, byte(len(opt.Data)))
		out = append(out, opt.Data...)
	}
	out = append(out, OptEnd)
	return out, nil
}
