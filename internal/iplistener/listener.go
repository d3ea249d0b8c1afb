// Package iplistener captures IP traffic on a datalink interface with
// gopacket/pcap and hands matching packets to the GTP side for
// encapsulation. Packets that match neither the configured source nor
// destination filter are dropped rather than passed through.
package iplistener

import (
	"context"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/metrics"
	"github.com/your-org/gtp-tunnel/internal/stats"
)

// Listener captures packets on a network interface and forwards the ones
// matching the configured filters.
type Listener struct {
	config   *config.Config
	handle   *pcap.Handle
	srcNet   *net.IPNet
	dstNet   *net.IPNet
	counters *stats.Counters
	logger   *zap.Logger
	tracer   trace.Tracer

	// Forward is called for every packet that passes the filter, with the
	// raw IP packet bytes (no datalink framing).
	Forward func(ipPacket []byte)
}

func New(cfg *config.Config, counters *stats.Counters, logger *zap.Logger) (*Listener, error) {
	l := &Listener{config: cfg, counters: counters, logger: logger, tracer: otel.Tracer("iplistener")}

	if cfg.IPListener.SourceCIDR != "" {
		_, n, err := net.ParseCIDR(cfg.IPListener.SourceCIDR)
		if err != nil {
			return nil, fmt.Errorf("iplistener: parse source_cidr: %w", err)
		}
		l.srcNet = n
	}
	if cfg.IPListener.DestCIDR != "" {
		_, n, err := net.ParseCIDR(cfg.IPListener.DestCIDR)
		if err != nil {
			return nil, fmt.Errorf("iplistener: parse dest_cidr: %w", err)
		}
		l.dstNet = n
	}

	return l, nil
}

// Run opens the capture handle and processes packets until ctx is
// canceled.
func (l *Listener) Run(ctx context.Context) error {
	handle, err := pcap.OpenLive(
		l.config.IPListener.Interface,
		int32(l.config.IPListener.SnapLen),
		l.config.IPListener.Promiscuous,
		pcap.BlockForever,
	)
	if err != nil {
		return fmt.Errorf("iplistener: open %s: %w", l.config.IPListener.Interface, err)
	}
	l.handle = handle
	defer handle.Close()

	l.logger.Info("ip listener started", zap.String("interface", l.config.IPListener.Interface))

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	packets := source.Packets()

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt, ok := <-packets:
			if !ok {
				return nil
			}
			l.handlePacket(pkt)
		}
	}
}

func (l *Listener) handlePacket(pkt gopacket.Packet) {
	_, span := l.tracer.Start(context.Background(), "Listener.handlePacket")
	defer span.End()

	netLayer := pkt.NetworkLayer()
	if netLayer == nil {
		return
	}

	var src, dst net.IP
	switch ip := netLayer.(type) {
	case *layers.IPv4:
		src, dst = ip.SrcIP, ip.DstIP
	case *layers.IPv6:
		src, dst = ip.SrcIP, ip.DstIP
	default:
		return
	}

	if !l.passesFilter(src, dst) {
		l.counters.IncRxIPDropped()
		metrics.IPPacketsDropped.Inc()
		span.SetAttributes(attribute.String("action", "drop"))
		return
	}

	if l.Forward != nil {
		ipPacket := append(append([]byte(nil), netLayer.LayerContents()...), netLayer.LayerPayload()...)
		l.Forward(ipPacket)
	}
	l.counters.IncRxIP()
	metrics.IPPacketsTotal.WithLabelValues("rx").Inc()
}

// passesFilter decides whether a captured packet should be forwarded.
// When neither filter is configured, nothing matches and the packet is
// dropped rather than passed through unfiltered.
func (l *Listener) passesFilter(src, dst net.IP) bool {
	if l.srcNet == nil && l.dstNet == nil {
		return false
	}
	if l.srcNet != nil && l.srcNet.Contains(src) {
		return true
	}
	if l.dstNet != nil && l.dstNet.Contains(dst) {
		return true
	}
	return false
}

func (l *Listener) Close() {
	if l.handle != nil {
		l.handle.Close()
	}
}
