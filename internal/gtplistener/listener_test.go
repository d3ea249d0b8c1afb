package gtplistener

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/gtpv1"
	"github.com/your-org/gtp-tunnel/internal/stats"
)

type fakeChannel struct {
	sent [][]byte
}

func (f *fakeChannel) Send(packet []byte) error {
	f.sent = append(f.sent, append([]byte(nil), packet...))
	return nil
}
func (f *fakeChannel) Recv(buf []byte) (int, error) { return 0, net.ErrClosed }
func (f *fakeChannel) Close() error                 { return nil }

func newTestListener(t *testing.T) (*Listener, *fakeChannel, *net.UDPConn) {
	t.Helper()
	cfg := &config.Config{}
	cfg.GTPListener.RestartCount = 3

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ch := &fakeChannel{}
	logger, _ := zap.NewDevelopment()
	l := New(cfg, ch, &stats.Counters{}, logger)
	l.conn = conn
	return l, ch, conn
}

func TestHandlePacket_EchoRequest_SendsEchoResponse(t *testing.T) {
	l, _, conn := newTestListener(t)

	peerConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer peerConn.Close()
	peerAddr := peerConn.LocalAddr().(*net.UDPAddr)
	_ = conn

	msg := gtpv1.Message{Type: gtpv1.MsgEchoRequest, EchoRequest: gtpv1.EchoRequestMsg{}}
	p := gtpv1.NewPacket(msg, 0)
	buf := make([]byte, 64)
	n, err := p.Generate(buf)
	require.NoError(t, err)

	l.handlePacket(buf[:n], peerAddr)

	peerConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp := make([]byte, 64)
	rn, _, err := peerConn.ReadFromUDP(resp)
	require.NoError(t, err)

	respPacket, _, err := gtpv1.ParsePacket(resp[:rn])
	require.NoError(t, err)
	assert.Equal(t, gtpv1.MsgEchoResponse, respPacket.Message.Type)
	assert.Equal(t, uint8(3), respPacket.Message.EchoResponse.Recovery.RestartCounter)
	assert.Equal(t, uint64(1), l.counters.Snapshot().TxEchoResponse)
}

func TestHandlePacket_GPDU_ForwardsToChannelAndLearnsPeer(t *testing.T) {
	l, ch, _ := newTestListener(t)
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	payload := []byte{0x45, 0x00, 0x00, 0x14}
	gpdu := gtpv1.NewGPDU(payload)
	p := gtpv1.NewPacket(gtpv1.Message{Type: gtpv1.MsgGPDU, GPDU: gpdu}, 42)
	buf := make([]byte, 8+len(payload))
	n, err := p.Generate(buf)
	require.NoError(t, err)

	l.handlePacket(buf[:n], peer)

	require.Len(t, ch.sent, 1)
	assert.Equal(t, payload, ch.sent[0])
	assert.Equal(t, uint64(1), l.counters.Snapshot().TxIP)

	l.mu.Lock()
	learned, ok := l.peerByTEID[42]
	l.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, peer.String(), learned.String())
}

func TestForward_NoKnownPeer_Drops(t *testing.T) {
	l, _, _ := newTestListener(t)
	l.Forward([]byte{0x45, 0x00})
	assert.Equal(t, uint64(0), l.counters.Snapshot().TxGTP)
}

func TestHandlePacket_Unparseable_IncrementsIgnored(t *testing.T) {
	l, _, _ := newTestListener(t)
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	l.handlePacket([]byte{0xFF}, peer)

	assert.Equal(t, uint64(1), l.counters.Snapshot().RxIgnoredGTP)
}
