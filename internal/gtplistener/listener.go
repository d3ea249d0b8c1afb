// Package gtplistener runs the UDP GTP-U/C listener: it decodes inbound
// GTPv1 packets, answers Echo Requests in-line, and forwards T-PDU
// payloads to the transport channel for injection into the host IP stack.
package gtplistener

import (
	"context"
	"net"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/gtpv1"
	"github.com/your-org/gtp-tunnel/internal/metrics"
	"github.com/your-org/gtp-tunnel/internal/stats"
	"github.com/your-org/gtp-tunnel/internal/transport"
)

// Listener is the GTP-U/C side of the tunnel.
type Listener struct {
	config   *config.Config
	conn     *net.UDPConn
	channel  transport.Channel
	counters *stats.Counters
	logger   *zap.Logger
	restart  uint8
	tracer   trace.Tracer

	mu         sync.Mutex
	peerByTEID map[uint32]*net.UDPAddr
}

func New(cfg *config.Config, channel transport.Channel, counters *stats.Counters, logger *zap.Logger) *Listener {
	return &Listener{
		config:     cfg,
		channel:    channel,
		counters:   counters,
		logger:     logger,
		restart:    cfg.GTPListener.RestartCount,
		tracer:     otel.Tracer("gtplistener"),
		peerByTEID: make(map[uint32]*net.UDPAddr),
	}
}

// Run opens the UDP socket and processes packets until ctx is canceled.
func (l *Listener) Run(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.config.GetGTPAddress())
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	l.conn = conn
	defer conn.Close()

	l.logger.Info("gtp listener started", zap.String("address", l.config.GetGTPAddress()))

	go l.runDownlink(ctx)

	buf := make([]byte, 65535)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Error("gtp read failed", zap.Error(err))
			continue
		}
		l.handlePacket(buf[:n], peer)
	}
}

func (l *Listener) handlePacket(data []byte, peer *net.UDPAddr) {
	_, span := l.tracer.Start(context.Background(), "Listener.handlePacket")
	defer span.End()

	l.counters.IncRxGTP()

	p, _, err := gtpv1.ParsePacket(data)
	if err != nil {
		l.counters.IncRxIgnoredGTP()
		span.SetAttributes(attribute.String("action", "drop"))
		l.logger.Debug("dropping unparseable gtp packet", zap.Error(err), zap.String("peer", peer.String()))
		return
	}

	switch p.Message.Type {
	case gtpv1.MsgEchoRequest:
		l.counters.IncRxEchoRequest()
		metrics.GTPPacketsTotal.WithLabelValues("rx", "echo_request").Inc()
		l.sendEchoResponse(peer)
	case gtpv1.MsgGPDU:
		metrics.GTPPacketsTotal.WithLabelValues("rx", "g_pdu").Inc()
		span.SetAttributes(attribute.Int64("teid", int64(p.Header.TEID)))
		l.mu.Lock()
		l.peerByTEID[p.Header.TEID] = peer
		l.mu.Unlock()
		if err := l.channel.Send(p.Message.GPDU.Payload); err != nil {
			l.logger.Error("failed to inject decapsulated packet", zap.Error(err))
			return
		}
		l.counters.IncTxIP()
	default:
		l.logger.Debug("unsupported gtp message type", zap.Uint8("type", uint8(p.Message.Type)))
	}
}

func (l *Listener) sendEchoResponse(peer *net.UDPAddr) {
	msg := gtpv1.Message{Type: gtpv1.MsgEchoResponse, EchoResponse: gtpv1.EchoResponseMsg{
		Recovery: gtpv1.Recovery{RestartCounter: l.restart},
	}}
	p := gtpv1.NewPacket(msg, 0)

	buf := make([]byte, 64)
	n, err := p.Generate(buf)
	if err != nil {
		l.logger.Error("failed to encode echo response", zap.Error(err))
		return
	}
	if _, err := l.conn.WriteToUDP(buf[:n], peer); err != nil {
		l.logger.Error("failed to send echo response", zap.Error(err))
		return
	}
	l.counters.IncTxEchoResponse()
	metrics.GTPPacketsTotal.WithLabelValues("tx", "echo_response").Inc()
}

// runDownlink reads packets the host wants tunneled out and hands each one
// to Forward for encapsulation toward a learned peer.
func (l *Listener) runDownlink(ctx context.Context) {
	buf := make([]byte, l.config.Transport.MTU)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := l.channel.Recv(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("failed to read from transport channel", zap.Error(err))
			continue
		}
		l.counters.IncRxIP()
		l.forwardDownlink(buf[:n])
	}
}

func (l *Listener) forwardDownlink(ipPacket []byte) {
	l.Forward(ipPacket)
}

// Forward encapsulates an IP packet as a G-PDU with TEID 0 and sends it to
// a peer learned from inbound G-PDUs. When peers are known for several
// TEIDs, which one is used is not defined (map iteration order picks it).
// If no peer is known the packet is dropped. It is the shared sink
// for both TUN-originated uplink traffic (via runDownlink) and packets
// captured independently by the IP listener's datalink sniffer, so both
// paths fold through the same peer-selection and encoding logic.
func (l *Listener) Forward(ipPacket []byte) {
	l.mu.Lock()
	var peer *net.UDPAddr
	for _, p := range l.peerByTEID {
		peer = p
		break
	}
	l.mu.Unlock()
	if peer == nil {
		l.logger.Debug("no known peer for uplink packet, dropping")
		return
	}

	msg := gtpv1.NewGPDU(ipPacket)
	p := gtpv1.NewPacket(gtpv1.Message{Type: gtpv1.MsgGPDU, GPDU: msg}, 0)

	buf := make([]byte, 8+len(ipPacket))
	n, err := p.Generate(buf)
	if err != nil {
		l.logger.Error("failed to encode g-pdu", zap.Error(err))
		return
	}
	if _, err := l.conn.WriteToUDP(buf[:n], peer); err != nil {
		l.logger.Error("failed to send g-pdu", zap.Error(err))
		return
	}
	l.counters.IncTxGTP()
	metrics.GTPPacketsTotal.WithLabelValues("tx", "g_pdu").Inc()
}

// Tunnels returns a snapshot of the known TEID-to-peer mappings, keyed by
// TEID with the peer's address string as the value, for the admin surface's
// tunnel-listing endpoint.
func (l *Listener) Tunnels() map[uint32]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[uint32]string, len(l.peerByTEID))
	for teid, peer := range l.peerByTEID {
		out[teid] = peer.String()
	}
	return out
}
