package gtpv1

import (
	"fmt"
	"strings"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// APN is the TLV-format Access Point Name IE (8.6 TS 29.060), stored as a
// dotted ASCII string and wire-encoded as a sequence of length-prefixed DNS
// labels with no terminating zero label.
type APN struct {
	Name string // dot-joined labels, e.g. "internet.mnc001.mcc001.gprs"
}

func (v APN) bodyLen() int {
	if v.Name == "" {
		return 0
	}
	n := 0
	for _, label := range strings.Split(v.Name, ".") {
		n += 1 + len(label)
	}
	return n
}

func (v APN) length() int { return 1 + 2 + v.bodyLen() }

func (v APN) encode(buf []byte) (int, error) {
	need := v.length()
	if len(buf) < need {
		return 0, fmt.Errorf("gtpv1: APN: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IEAPN)
	field.WriteU16(buf, 1, uint16(v.bodyLen()))
	pos := 3
	if v.Name != "" {
		for _, label := range strings.Split(v.Name, ".") {
			if len(label) > 0xFF {
				return 0, fmt.Errorf("gtpv1: APN: label too long")
			}
			buf[pos] = byte(len(label))
			pos++
			copy(buf[pos:], label)
			pos += len(label)
		}
	}
	return pos, nil
}

func decodeAPN(buf []byte) (APN, int, error) {
	if len(buf) < 3 {
		return APN{}, 0, fmt.Errorf("gtpv1: APN: %w", field.ErrShortBuffer)
	}
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return APN{}, 0, err
	}
	total := 3 + int(length)
	if len(buf) < total {
		return APN{}, 0, fmt.Errorf("gtpv1: APN: %w", field.ErrShortBuffer)
	}

	var labels []string
	pos := 3
	for pos < total {
		labelLen := int(buf[pos])
		pos++
		if pos+labelLen > total {
			return APN{}, 0, fmt.Errorf("gtpv1: APN: label overruns IE body")
		}
		labels = append(labels, string(buf[pos:pos+labelLen]))
		pos += labelLen
	}
	return APN{Name: strings.Join(labels, ".")}, total, nil
}

// QoSProfile is the TLV-format Quality of Service Profile IE (8.15
// TS 29.060, pre-Rel-99-extended format). The mandatory prefix (Allocation
// Retention Priority, delay/reliability class, peak/precedence/mean
// throughput) is always encoded/decoded; any remaining 3GPP-table octets
// are carried opaquely in Extra, never individually decomposed.
type QoSProfile struct {
	AllocationRetentionPriority uint8
	DelayClass                 uint8 // bits 6..4 of octet
	ReliabilityClass            uint8 // bits 3..1 of octet
	PeakThroughput              uint8 // bits 8..5 of octet
	PrecedenceClass             uint8 // bits 3..1 of octet
	MeanThroughput              uint8
	Extra                       []byte
}

func (v QoSProfile) bodyLen() int { return 4 + len(v.Extra) }

func (v QoSProfile) length() int { return 1 + 2 + v.bodyLen() }

func (v QoSProfile) encode(buf []byte) (int, error) {
	need := v.length()
	if len(buf) < need {
		return 0, fmt.Errorf("gtpv1: QoSProfile: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IEQoSProfile)
	field.WriteU16(buf, 1, uint16(v.bodyLen()))
	buf[3] = v.AllocationRetentionPriority
	buf[4] = ((v.DelayClass & 0x7) << 3) | (v.ReliabilityClass & 0x7)
	buf[5] = ((v.PeakThroughput & 0xF) << 4) | (v.PrecedenceClass & 0x7)
	buf[6] = v.MeanThroughput
	copy(buf[7:], v.Extra)
	return need, nil
}

func decodeQoSProfile(buf []byte) (QoSProfile, int, error) {
	if len(buf) < 7 {
		return QoSProfile{}, 0, fmt.Errorf("gtpv1: QoSProfile: %w", field.ErrShortBuffer)
	}
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return QoSProfile{}, 0, err
	}
	total := 3 + int(length)
	if len(buf) < total || length < 4 {
		return QoSProfile{}, 0, fmt.Errorf("gtpv1: QoSProfile: %w", field.ErrShortBuffer)
	}
	v := QoSProfile{
		AllocationRetentionPriority: buf[3],
		DelayClass:                  (buf[4] >> 3) & 0x7,
		ReliabilityClass:            buf[4] & 0x7,
		PeakThroughput:              (buf[5] >> 4) & 0xF,
		PrecedenceClass:             buf[5] & 0x7,
		MeanThroughput:              buf[6],
	}
	if extra := total - 7; extra > 0 {
		v.Extra = make([]byte, extra)
		copy(v.Extra, buf[7:total])
	}
	return v, total, nil
}
