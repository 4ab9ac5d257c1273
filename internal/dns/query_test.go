package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQueryMsg(t *testing.T, id uint16, flags uint16, qdcount uint16, name string) []byte {
	t.Helper()
	h := Header{ID: id, Flags: flags, QDCount: qdcount}
	hb, err := h.Marshal()
	require.NoError(t, err)
	q := Question{Name: name, Type: uint16(TypeA), Class: uint16(ClassIN)}
	qb, err := q.Marshal()
	require.NoError(t, err)
	return append(hb, qb...)
}

func TestParseQuery(t *testing.T) {
	msg := buildQueryMsg(t, 0x1234, RDFlag, 1, "example.com")
	q, err := ParseQuery(msg)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), q.ID)
	assert.True(t, q.RD())
	assert.Equal(t, "example.com", q.Q.Name)
	assert.Equal(t, uint16(TypeA), q.Q.Type)
}

func TestParseQueryRejectsResponse(t *testing.T) {
	msg := buildQueryMsg(t, 1, QRFlag, 1, "example.com")
	_, err := ParseQuery(msg)
	require.ErrorIs(t, err, ErrDNSError)
}

func TestParseQueryRejectsNonZeroOpcode(t *testing.T) {
	msg := buildQueryMsg(t, 1, 1<<11, 1, "example.com")
	_, err := ParseQuery(msg)
	require.ErrorIs(t, err, ErrDNSError)
}

func TestParseQueryRejectsMultiQuestion(t *testing.T) {
	msg := buildQueryMsg(t, 1, 0, 2, "example.com")
	_, err := ParseQuery(msg)
	require.ErrorIs(t, err, ErrDNSError)
}

func TestParseQueryRejectsOversized(t *testing.T) {
	_, err := ParseQuery(make([]byte, MaxIncomingDNSMessageSize+1))
	require.ErrorIs(t, err, ErrDNSError)
}

func TestNormalizeNameLowercasesAndTrimsDot(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeName("Example.COM."))
}

func TestEncodeDecodeNameRoundTrip(t *testing.T) {
	enc, err := EncodeName("www.example.com")
	require.NoError(t, err)
	off := 0
	name, err := DecodeName(enc, &off)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", name)
	assert.Equal(t, len(enc), off)
}

func TestEncodeNameRejectsEmptyLabel(t *testing.T) {
	_, err := EncodeName("www..com")
	require.ErrorIs(t, err, ErrDNSError)
}

func TestEncodeNameRejectsOverlongLabel(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	_, err := EncodeName(string(long) + ".com")
	require.ErrorIs(t, err, ErrDNSError)
}

func TestDecodeNameFollowsCompressionPointer(t *testing.T) {
	msg := buildQueryMsg(t, 1, 0, 1, "example.com")
	// The question name starts at offset HeaderSize (12); append a pointer
	// straight at it after the question and decode from the pointer.
	ptrOff := len(msg)
	buf := append(append([]byte(nil), msg...), 0xC0, 0x0C)
	off := ptrOff
	name, err := DecodeName(buf, &off)
	require.NoError(t, err)
	assert.Equal(t, "example.com", name)
}

func TestDecodeNameRejectsPointerLoop(t *testing.T) {
	// A name at offset 0 that points right back at offset 0.
	msg := []byte{0xC0, 0x00}
	off := 0
	_, err := DecodeName(msg, &off)
	require.ErrorIs(t, err, ErrDNSError)
}
