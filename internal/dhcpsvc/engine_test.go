package dhcpsvc

import (
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/dhcpwire"
	"github.com/jroosing/netsvcd/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		DHCPServerIP: net.ParseIP("192.168.1.1").To4(),
		SubnetMask:   net.ParseIP("255.255.255.0").To4(),
		RouterIP:     net.ParseIP("192.168.1.1").To4(),
		DNSIP:        net.ParseIP("192.168.1.1").To4(),
		PoolStart:    dhcpwire.IPToUint32(net.ParseIP("192.168.1.100")),
		PoolEnd:      dhcpwire.IPToUint32(net.ParseIP("192.168.1.101")),
		LeaseSeconds: 3600,
		InFlightTimeout: 5 * time.Second,
		SweepInterval:   time.Second,
	}
}

func testEngine(t *testing.T) (*Engine, *store.BusySet) {
	t.Helper()
	bs, err := store.LoadBusySet(filepath.Join(t.TempDir(), "busy.json"))
	require.NoError(t, err)
	return New(testConfig(), bs, testLogger(), nil), bs
}

func discoverFrame(t *testing.T, xid uint32) []byte {
	t.Helper()
	f := dhcpwire.Frame{Op: dhcpwire.OpRequest, HType: 1, HLen: 6, XID: xid}
	b, err := f.Marshal([]dhcpwire.Option{
		{Code: dhcpwire.OptMessageType, Data: []byte{dhcpwire.MsgDiscover}},
	})
	require.NoError(t, err)
	return b
}

func requestFrame(t *testing.T, xid uint32, requestedIP [4]byte) []byte {
	t.Helper()
	f := dhcpwire.Frame{Op: dhcpwire.OpRequest, HType: 1, HLen: 6, XID: xid}
	b, err := f.Marshal([]dhcpwire.Option{
		{Code: dhcpwire.OptMessageType, Data: []byte{dhcpwire.MsgRequest}},
		{Code: dhcpwire.OptRequestedIP, Data: requestedIP[:]},
	})
	require.NoError(t, err)
	return b
}

func TestHandleDiscoverOffersFirstFreeAddress(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Handle(discoverFrame(t, 1))
	require.True(t, result.Ok)

	reply, err := dhcpwire.Parse(result.Bytes)
	require.NoError(t, err)
	mt, ok := reply.MessageType()
	require.True(t, ok)
	assert.Equal(t, dhcpwire.MsgOffer, mt)
	assert.Equal(t, [4]byte{192, 168, 1, 100}, reply.YIAddr)
}

func TestHandleDiscoverDropsWhenPoolExhausted(t *testing.T) {
	e, bs := testEngine(t)
	require.NoError(t, bs.Add(dhcpwire.IPToUint32(net.ParseIP("192.168.1.100"))))
	require.NoError(t, bs.Add(dhcpwire.IPToUint32(net.ParseIP("192.168.1.101"))))

	result := e.Handle(discoverFrame(t, 2))
	assert.False(t, result.Ok)
}

func TestHandleRequestAcksFreeAddress(t *testing.T) {
	e, bs := testEngine(t)
	result := e.Handle(requestFrame(t, 3, [4]byte{192, 168, 1, 100}))
	require.True(t, result.Ok)

	reply, err := dhcpwire.Parse(result.Bytes)
	require.NoError(t, err)
	mt, ok := reply.MessageType()
	require.True(t, ok)
	assert.Equal(t, dhcpwire.MsgACK, mt)
	assert.True(t, bs.Contains(dhcpwire.IPToUint32(net.ParseIP("192.168.1.100"))))
}

func TestHandleRequestNaksAlreadyBusyAddress(t *testing.T) {
	e, bs := testEngine(t)
	require.NoError(t, bs.Add(dhcpwire.IPToUint32(net.ParseIP("192.168.1.100"))))

	result := e.Handle(requestFrame(t, 4, [4]byte{192, 168, 1, 100}))
	require.True(t, result.Ok)

	reply, err := dhcpwire.Parse(result.Bytes)
	require.NoError(t, err)
	mt, ok := reply.MessageType()
	require.True(t, ok)
	assert.Equal(t, dhcpwire.MsgNAK, mt)
}

func TestHandleRequestNaksOutOfPoolAddress(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Handle(requestFrame(t, 5, [4]byte{10, 0, 0, 1}))
	require.True(t, result.Ok)

	reply, err := dhcpwire.Parse(result.Bytes)
	require.NoError(t, err)
	mt, ok := reply.MessageType()
	require.True(t, ok)
	assert.Equal(t, dhcpwire.MsgNAK, mt)
}

func TestHandleDropsMalformedFrame(t *testing.T) {
	e, _ := testEngine(t)
	result := e.Handle([]byte("not a dhcp frame"))
	assert.False(t, result.Ok)
}

func TestHandleDropsUnsupportedMessageType(t *testing.T) {
	e, _ := testEngine(t)
	f := dhcpwire.Frame{Op: dhcpwire.OpRequest, HType: 1, HLen: 6, XID: 6}
	b, err := f.Marshal([]dhcpwire.Option{
		{Code: dhcpwire.OptMessageType, Data: []byte{dhcpwire.MsgDecline}},
	})
	require.NoError(t, err)
	result := e.Handle(b)
	assert.False(t, result.Ok)
}

func TestDestinationUsesGiaddrWhenPresent(t *testing.T) {
	e, _ := testEngine(t)
	req := dhcpwire.Frame{GIAddr: [4]byte{10, 0, 0, 1}}
	dest := e.destination(req, [4]byte{192, 168, 1, 100}, false)
	assert.Equal(t, "10.0.0.1", dest.IP.String())
	assert.Equal(t, portServer, dest.Port)
}

func TestDestinationBroadcastsWhenRequested(t *testing.T) {
	e, _ := testEngine(t)
	req := dhcpwire.Frame{Flags: dhcpwire.BroadcastBit}
	dest := e.destination(req, [4]byte{192, 168, 1, 100}, false)
	assert.Equal(t, "192.168.1.255", dest.IP.String())
}

func TestDestinationForcesBroadcastForNAK(t *testing.T) {
	e, _ := testEngine(t)
	req := dhcpwire.Frame{}
	dest := e.destination(req, [4]byte{}, true)
	assert.Equal(t, "192.168.1.255", dest.IP.String())
}
