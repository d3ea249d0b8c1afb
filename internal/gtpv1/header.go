package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// ProtocolType distinguishes GTP from GTP'; only GTP is supported.
type ProtocolType uint8

const (
	ProtocolTypeGTPPrime ProtocolType = 0
	ProtocolTypeGTP      ProtocolType = 1
)

// Header is the GTPv1 mandatory 8-octet header plus any optional fields.
type Header struct {
	ProtocolType   ProtocolType
	MessageType    MessageType
	TEID           uint32
	SequenceNumber uint16
	HasSeq         bool
	NPDUNumber     uint8
	HasNPDU        bool
	Extensions     Chain
}

const mandatoryHeaderLen = 8

// hasExt reports whether the extension-header flag (E) should be set: true
// whenever the chain is non-empty.
func (h *Header) hasExt() bool {
	return !h.Extensions.Empty()
}

// optionalLen is the byte contribution of SN + N-PDU + next-ext-type +
// extension chain, i.e. everything the length field counts beyond the
// payload besides the mandatory 8 octets.
func (h *Header) optionalLen() int {
	n := 0
	if h.HasSeq {
		n += 2
	}
	if h.HasNPDU {
		n += 1
	}
	if h.hasExt() {
		n += 1 // next-ext-hdr-type octet
	}
	n += h.Extensions.length()
	return n
}

// encode writes the header for a message whose body occupies payloadLen
// bytes, returning the number of header bytes written.
func (h *Header) encode(buf []byte, payloadLen int) (int, error) {
	if len(buf) < mandatoryHeaderLen {
		return 0, fmt.Errorf("gtpv1: header: %w", field.ErrShortBuffer)
	}

	flags := byte(1 << 5) // version = 1
	flags |= byte(h.ProtocolType&0x1) << 4
	if h.hasExt() {
		flags |= 1 << 2
	}
	if h.HasSeq {
		flags |= 1 << 1
	}
	if h.HasNPDU {
		flags |= 1
	}
	buf[0] = flags
	buf[1] = byte(h.MessageType)

	length := uint16(payloadLen + h.optionalLen())
	if err := field.WriteU16(buf, 2, length); err != nil {
		return 0, err
	}
	if err := field.WriteU32(buf, 4, h.TEID); err != nil {
		return 0, err
	}

	pos := mandatoryHeaderLen
	if len(buf) < pos+h.optionalLen() {
		return 0, fmt.Errorf("gtpv1: header optionals: %w", field.ErrShortBuffer)
	}
	if h.HasSeq {
		field.WriteU16(buf, pos, h.SequenceNumber)
		pos += 2
	}
	if h.HasNPDU {
		buf[pos] = h.NPDUNumber
		pos++
	}
	if h.hasExt() {
		buf[pos] = byte(h.Extensions.headType())
		pos++

		n, err := h.Extensions.encode(buf[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
	}

	return pos, nil
}

// decodeHeader parses a GTPv1 header from buf, returning the header and the
// number of bytes consumed.
func decodeHeader(buf []byte) (*Header, int, error) {
	if len(buf) < mandatoryHeaderLen {
		return nil, 0, fmt.Errorf("gtpv1: header: %w", field.ErrShortBuffer)
	}

	flags := buf[0]
	version := (flags >> 5) & 0x07
	if version != 1 {
		return nil, 0, fmt.Errorf("gtpv1: unsupported version %d", version)
	}

	h := &Header{
		ProtocolType: ProtocolType((flags >> 4) & 0x1),
		MessageType:  MessageType(buf[1]),
		HasSeq:       (flags>>1)&0x1 == 1,
		HasNPDU:      flags&0x1 == 1,
	}
	hasExt := (flags>>2)&0x1 == 1

	teid, err := field.ReadU32(buf, 4)
	if err != nil {
		return nil, 0, err
	}
	h.TEID = teid

	pos := mandatoryHeaderLen
	if h.HasSeq {
		sn, err := field.ReadU16(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		h.SequenceNumber = sn
		pos += 2
	}
	if h.HasNPDU {
		if len(buf) < pos+1 {
			return nil, 0, fmt.Errorf("gtpv1: header optionals: %w", field.ErrShortBuffer)
		}
		h.NPDUNumber = buf[pos]
		pos++
	}
	if hasExt {
		if len(buf) < pos+1 {
			return nil, 0, fmt.Errorf("gtpv1: header optionals: %w", field.ErrShortBuffer)
		}
		nextExtType := ExtHeaderType(buf[pos])
		pos++
		chain, n, err := decodeChain(nextExtType, buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		h.Extensions = *chain
		pos += n
	}

	return h, pos, nil
}
