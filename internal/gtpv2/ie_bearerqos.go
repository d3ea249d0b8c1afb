package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

const bearerQoSMaxBitrate = 10_000_000

// BearerQoS is the per-bearer QoS profile: a flag octet (pre-emption
// vulnerability/capability, priority level), the QCI, and four 40-bit
// bitrates (max/guaranteed, uplink/downlink).
//
// The flag octet's PCI and PVI bits are stored inverted on the wire: the
// bit is 1 exactly when the boolean is false. Both encode and decode apply
// the same inversion, so round-tripping is consistent.
type BearerQoS struct {
	Instance                  uint8
	PCI                       bool
	PriorityLevel             uint8 // 0..15
	PVI                       bool
	QCI                       uint8
	MaxBitrateUplink          uint64
	MaxBitrateDownlink        uint64
	GuaranteedBitrateUplink   uint64
	GuaranteedBitrateDownlink uint64
}

func NewBearerQoS(v BearerQoS) (BearerQoS, error) {
	if v.PriorityLevel > 0xF {
		return BearerQoS{}, fmt.Errorf("gtpv2: BearerQoS: priority level out of range: %d", v.PriorityLevel)
	}
	for _, rate := range []uint64{v.MaxBitrateUplink, v.MaxBitrateDownlink, v.GuaranteedBitrateUplink, v.GuaranteedBitrateDownlink} {
		if rate > bearerQoSMaxBitrate {
			return BearerQoS{}, fmt.Errorf("gtpv2: BearerQoS: bitrate exceeds %d: %d", bearerQoSMaxBitrate, rate)
		}
	}
	if err := checkInstance(v.Instance); err != nil {
		return BearerQoS{}, err
	}
	return v, nil
}

func (v BearerQoS) length() int { return ieHeaderLen + 22 }

func (v BearerQoS) flags() byte {
	var f byte
	if !v.PCI {
		f |= 1 << 6
	}
	f |= (v.PriorityLevel & 0xF) << 2
	if !v.PVI {
		f |= 1
	}
	return f
}

func (v BearerQoS) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEBearerQoS, 22, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	buf[pos] = v.flags()
	buf[pos+1] = v.QCI
	pos += 2
	for _, rate := range []uint64{v.MaxBitrateUplink, v.MaxBitrateDownlink, v.GuaranteedBitrateUplink, v.GuaranteedBitrateDownlink} {
		if err := field.WriteUintBE(buf, pos, 5, rate); err != nil {
			return 0, err
		}
		pos += 5
	}
	return pos, nil
}

func decodeBearerQoS(buf []byte) (BearerQoS, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return BearerQoS{}, 0, err
	}
	if length < 22 || len(buf) < total {
		return BearerQoS{}, 0, fmt.Errorf("gtpv2: BearerQoS: %w", field.ErrShortBuffer)
	}
	pos := ieHeaderLen
	flags := buf[pos]
	v := BearerQoS{
		Instance:      instance,
		PCI:           flags&(1<<6) == 0,
		PriorityLevel: (flags >> 2) & 0xF,
		PVI:           flags&1 == 0,
		QCI:           buf[pos+1],
	}
	pos += 2
	rates := make([]uint64, 4)
	for i := range rates {
		r, err := field.ReadUintBE(buf, pos, 5)
		if err != nil {
			return BearerQoS{}, 0, err
		}
		rates[i] = r
		pos += 5
	}
	v.MaxBitrateUplink, v.MaxBitrateDownlink = rates[0], rates[1]
	v.GuaranteedBitrateUplink, v.GuaranteedBitrateDownlink = rates[2], rates[3]
	return v, total, nil
}
